package controllers

import (
	"tts-guard-backend/bleve/repositories"
)

type SearchController struct {
	repo repositories.BleveRepositoryInterface
}

func NewSearchController(repo repositories.BleveRepositoryInterface) *SearchController {
	return &SearchController{repo: repo}
}
