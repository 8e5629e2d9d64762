package repositories

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// textQuery ranks exact, analysed, prefix, fuzzy and wildcard matches on the
// given fields, in that order. fields[0] is the primary field and gets the
// wildcard and fuzzy passes.
func textQuery(queryString string, fields ...string) query.Query {
	lower := strings.ToLower(queryString)
	strategies := bleve.NewBooleanQuery()

	for i, field := range fields {
		step := float64(i) * 0.5

		exact := bleve.NewTermQuery(lower)
		exact.SetField(field)
		exact.SetBoost(10.0 - step)
		strategies.AddShould(exact)

		match := bleve.NewMatchQuery(queryString)
		match.SetField(field)
		match.SetBoost(7.0 - step)
		strategies.AddShould(match)

		prefix := bleve.NewPrefixQuery(lower)
		prefix.SetField(field)
		prefix.SetBoost(6.0 - step)
		strategies.AddShould(prefix)
	}

	fuzzy := bleve.NewFuzzyQuery(lower)
	fuzzy.SetField(fields[0])
	fuzzy.SetFuzziness(1)
	fuzzy.SetBoost(4.0)
	strategies.AddShould(fuzzy)

	for i, pattern := range []string{"*" + lower + "*", lower + "*", "*" + lower} {
		wildcard := bleve.NewWildcardQuery(pattern)
		wildcard.SetField(fields[0])
		wildcard.SetBoost(3.0 - float64(i)*0.5)
		strategies.AddShould(wildcard)
	}
	return strategies
}

// filtered combines an optional text query with exact-match filters on
// keyword fields. An empty query string matches everything.
func filtered(text query.Query, filters map[string]string) query.Query {
	final := bleve.NewBooleanQuery()
	clauses := 0
	if text != nil {
		final.AddMust(text)
		clauses++
	}
	for field, value := range filters {
		if value == "" {
			continue
		}
		q := bleve.NewMatchQuery(value)
		q.SetField(field)
		q.SetOperator(query.MatchQueryOperatorAnd)
		final.AddMust(q)
		clauses++
	}
	if clauses == 0 {
		return bleve.NewMatchAllQuery()
	}
	return final
}
