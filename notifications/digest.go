package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/db/models"
	"tts-guard-backend/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeOverdueDigest = "digest:overdue"

type DigestPayload struct {
	Date string `json:"date"`
}

func NewOverdueDigestTask(date time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(DigestPayload{Date: utils.SQLDate(date)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOverdueDigest, payload, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute)), nil
}

type OverdueLister interface {
	ListOverdueInspections(ctx context.Context) ([]models.Inspection, error)
}

// DigestHandler emails the overdue inspection list to the operations team.
type DigestHandler struct {
	Overdue    OverdueLister
	Mailer     Mailer
	Recipients []string
}

var digestTemplate = template.Must(template.New("digest").Parse(`<html>
<body>
<p>{{len .Rows}} inspection(s) are overdue as of {{.Date}}.</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Scheduled</th><th>Building</th><th>Address</th><th>Technician</th></tr>
{{range .Rows}}<tr><td>{{.Scheduled}}</td><td>{{.Building}}</td><td>{{.Address}}</td><td>{{.Technician}}</td></tr>
{{end}}</table>
</body>
</html>`))

type digestRow struct {
	Scheduled  string
	Building   string
	Address    string
	Technician string
}

// RenderDigest returns the subject and html body for the overdue list.
func RenderDigest(date string, overdue []models.Inspection) (string, string, error) {
	rows := make([]digestRow, 0, len(overdue))
	for _, in := range overdue {
		row := digestRow{Scheduled: utils.SQLDate(in.ScheduledDate), Technician: in.Technician}
		if in.Building != nil {
			row.Building = in.Building.Name
			row.Address = in.Building.Address
		}
		rows = append(rows, row)
	}

	var body bytes.Buffer
	if err := digestTemplate.Execute(&body, struct {
		Date string
		Rows []digestRow
	}{date, rows}); err != nil {
		return "", "", fmt.Errorf("render digest: %w", err)
	}
	subject := fmt.Sprintf("TTS Guard: %d overdue inspection(s) on %s", len(rows), date)
	return subject, body.String(), nil
}

// Send builds and mails the digest for date. Nothing is sent when no
// inspection is overdue.
func (h *DigestHandler) Send(ctx context.Context, date string) error {
	overdue, err := h.Overdue.ListOverdueInspections(ctx)
	if err != nil {
		return err
	}
	if len(overdue) == 0 {
		config.Logger.Info("No overdue inspections, digest skipped", zap.String("date", date))
		return nil
	}
	if h.Mailer == nil || len(h.Recipients) == 0 {
		config.Logger.Warn("Digest not sent: mailer or recipients not configured",
			zap.Int("overdue", len(overdue)))
		return nil
	}

	subject, body, err := RenderDigest(date, overdue)
	if err != nil {
		return err
	}
	return h.Mailer.Send(h.Recipients, subject, body)
}

// ProcessTask implements asynq.Handler.
func (h *DigestHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p DigestPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode digest payload: %v: %w", err, asynq.SkipRetry)
	}
	return h.Send(ctx, p.Date)
}

// NewWorker returns the asynq server and mux that process digest tasks.
func NewWorker(opt asynq.RedisClientOpt, handler *DigestHandler) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 2,
		Logger:      zapAsynqLogger{},
	})
	mux := asynq.NewServeMux()
	mux.Handle(TypeOverdueDigest, handler)
	return srv, mux
}

// zapAsynqLogger routes asynq's logs into config.Logger.
type zapAsynqLogger struct{}

func (zapAsynqLogger) Debug(args ...interface{}) { config.Logger.Sugar().Debug(args...) }
func (zapAsynqLogger) Info(args ...interface{})  { config.Logger.Sugar().Info(args...) }
func (zapAsynqLogger) Warn(args ...interface{})  { config.Logger.Sugar().Warn(args...) }
func (zapAsynqLogger) Error(args ...interface{}) { config.Logger.Sugar().Error(args...) }
func (zapAsynqLogger) Fatal(args ...interface{}) { config.Logger.Sugar().Fatal(args...) }
