package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/analytics"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/config"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	"go.uber.org/zap"
)

const DailyStockLogKey = "alerts:stock:daily"

// headerSafe keeps product names from breaking out of the Subject header.
var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")

// Mailer delivers one message to the configured recipient.
type Mailer interface {
	Send(subject, contentType, body string) error
}

type smtpMailer struct {
	cfg config.AlertConfig
}

// NewSMTPMailer returns nil when SMTP is not configured.
func NewSMTPMailer(cfg config.AlertConfig) Mailer {
	if !cfg.Enabled() {
		return nil
	}
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(subject, contentType, body string) error {
	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + m.cfg.To,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: " + contentType + "; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%s", m.cfg.SMTPServer, m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPServer)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, []string{m.cfg.To}, []byte(msg))
}

type StockEvent struct {
	ProductID int                `json:"product_id"`
	Name      string             `json:"name"`
	Status    models.StockStatus `json:"status"`
	Stock     int                `json:"stock"`
	MinStock  int                `json:"min_stock"`
	Time      time.Time          `json:"time"`
}

// Alerter records products that need restocking and mails a daily digest.
// Events go to a Redis list when rdb is set and to process memory otherwise.
type Alerter struct {
	rdb    *redis.Client
	mailer Mailer
	clock  analytics.Clock
	logger *zap.Logger

	mu      sync.Mutex
	pending []StockEvent
	wg      sync.WaitGroup
}

func New(rdb *redis.Client, mailer Mailer, clock analytics.Clock, logger *zap.Logger) *Alerter {
	return &Alerter{rdb: rdb, mailer: mailer, clock: clock, logger: logger}
}

// StockChanged logs an event when p needs restocking and mails it right away.
// Products with healthy stock are ignored.
func (a *Alerter) StockChanged(ctx context.Context, p models.Product) {
	status := p.Status()
	if !status.IsLow() {
		return
	}

	e := StockEvent{
		ProductID: p.ID,
		Name:      p.Name,
		Status:    status,
		Stock:     p.CurrentStock,
		MinStock:  p.MinStock,
		Time:      a.clock.Now(),
	}
	if err := a.record(ctx, e); err != nil {
		a.logger.Error("failed to record stock alert", zap.Int("product_id", p.ID), zap.Error(err))
	}
	a.logger.Info("stock alert", zap.Int("product_id", p.ID), zap.String("status", string(status)), zap.Int("stock", p.CurrentStock))

	if a.mailer == nil {
		return
	}
	subject := fmt.Sprintf("STOCK ALERT: %s is %s", headerSafe.Replace(p.Name), status)
	body := fmt.Sprintf("Product: %s (#%d)\nStock: %d (minimum %d)\nTime: %s", p.Name, p.ID, p.CurrentStock, p.MinStock, e.Time.Format(time.RFC3339))
	a.send(subject, "text/plain", body)
}

func (a *Alerter) send(subject, contentType, body string) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.mailer.Send(subject, contentType, body); err != nil {
			a.logger.Error("failed to send alert email", zap.String("subject", subject), zap.Error(err))
		}
	}()
}

// Wait blocks until queued emails have been handed to the mailer.
func (a *Alerter) Wait() {
	a.wg.Wait()
}

func (a *Alerter) record(ctx context.Context, e StockEvent) error {
	if a.rdb == nil {
		a.mu.Lock()
		a.pending = append(a.pending, e)
		a.mu.Unlock()
		return nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return a.rdb.RPush(ctx, DailyStockLogKey, data).Err()
}

// drain returns and clears the events logged since the last digest.
func (a *Alerter) drain(ctx context.Context) ([]StockEvent, error) {
	if a.rdb == nil {
		a.mu.Lock()
		defer a.mu.Unlock()
		events := a.pending
		a.pending = nil
		return events, nil
	}

	var items *redis.StringSliceCmd
	_, err := a.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		items = pipe.LRange(ctx, DailyStockLogKey, 0, -1)
		pipe.Del(ctx, DailyStockLogKey)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var events []StockEvent
	for _, item := range items.Val() {
		var e StockEvent
		if err := json.Unmarshal([]byte(item), &e); err == nil {
			events = append(events, e)
		}
	}
	return events, nil
}

// Digest is the content of one daily summary.
type Digest struct {
	Events   []StockEvent
	Expiring []analytics.ExpiringProduct
}

// CollectDigest drains the logged events and pairs them with expiring products.
func (a *Alerter) CollectDigest(ctx context.Context, expiring []analytics.ExpiringProduct) (Digest, error) {
	events, err := a.drain(ctx)
	if err != nil {
		return Digest{}, fmt.Errorf("failed to read stock alerts: %w", err)
	}
	return Digest{Events: events, Expiring: expiring}, nil
}

// HTML renders the digest as an email body.
func (d Digest) HTML() string {
	perProduct := map[string]int{}
	for _, e := range d.Events {
		perProduct[html.EscapeString(e.Name)]++
	}

	var sb strings.Builder
	sb.WriteString("<h2>Daily Stock Summary</h2>")
	fmt.Fprintf(&sb, "<p>Stock alerts: <strong>%d</strong></p>", len(d.Events))

	sb.WriteString("<h3>By Product</h3><ul>")
	for name, count := range perProduct {
		fmt.Fprintf(&sb, "<li>%s: %d</li>", name, count)
	}
	sb.WriteString("</ul>")

	sb.WriteString("<h3>Expiring Soon</h3><ul>")
	for _, p := range d.Expiring {
		fmt.Fprintf(&sb, "<li><b>%s</b> (%d in stock) expires %s, %d days left</li>",
			html.EscapeString(p.Name), p.Stock, p.ExpiryDate.Format(time.DateOnly), p.DaysLeft)
	}
	sb.WriteString("</ul>")

	sb.WriteString("<h3>Full Log</h3><ul>")
	for _, e := range d.Events {
		fmt.Fprintf(&sb, "<li><b>%s</b> %s with %d left at %s</li>", html.EscapeString(e.Name), e.Status, e.Stock, e.Time.Format(time.RFC822))
	}
	sb.WriteString("</ul>")
	return sb.String()
}

// SendDailySummary mails the digest. Nothing is sent when there is nothing
// to report.
func (a *Alerter) SendDailySummary(ctx context.Context, expiring []analytics.ExpiringProduct) error {
	d, err := a.CollectDigest(ctx, expiring)
	if err != nil {
		return err
	}
	if len(d.Events) == 0 && len(d.Expiring) == 0 {
		return nil
	}
	if a.mailer == nil {
		a.logger.Info("daily stock summary", zap.Int("alerts", len(d.Events)), zap.Int("expiring", len(d.Expiring)))
		return nil
	}
	a.send("Daily Stock Report", "text/html", d.HTML())
	return nil
}

// StartDailySummary sends a summary every day at 23:59 until ctx is done.
func (a *Alerter) StartDailySummary(ctx context.Context, expiring func(context.Context) ([]analytics.ExpiringProduct, error)) {
	for {
		now := a.clock.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
		}

		products, err := expiring(ctx)
		if err != nil {
			a.logger.Error("failed to list expiring products", zap.Error(err))
		}
		if err := a.SendDailySummary(ctx, products); err != nil {
			a.logger.Error("failed to send daily summary", zap.Error(err))
		}
	}
}
