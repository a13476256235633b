package alert

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/analytics"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	"go.uber.org/zap"
)

var now = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

type sentMail struct {
	subject, contentType, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(subject, contentType, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{subject, contentType, body})
	return nil
}

func lowProduct() models.Product {
	return models.Product{ID: 7, Name: "Insulin", CurrentStock: 2, MinStock: 10, MaxStock: 50}
}

func TestStockChangedIgnoresHealthyStock(t *testing.T) {
	mailer := &fakeMailer{}
	a := New(nil, mailer, analytics.FixedClock(now), zap.NewNop())

	a.StockChanged(context.Background(), models.Product{ID: 1, Name: "Aspirin", CurrentStock: 30, MinStock: 10, MaxStock: 100})
	a.Wait()

	if len(mailer.sent) != 0 {
		t.Errorf("expected no emails, got %d", len(mailer.sent))
	}
	d, _ := a.CollectDigest(context.Background(), nil)
	if len(d.Events) != 0 {
		t.Errorf("expected no events, got %d", len(d.Events))
	}
}

func TestStockChangedMailsAndLogs(t *testing.T) {
	mailer := &fakeMailer{}
	a := New(nil, mailer, analytics.FixedClock(now), zap.NewNop())

	a.StockChanged(context.Background(), lowProduct())
	a.Wait()

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(mailer.sent))
	}
	if !strings.Contains(mailer.sent[0].subject, "Insulin is low") {
		t.Errorf("unexpected subject %q", mailer.sent[0].subject)
	}

	d, err := a.CollectDigest(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Events) != 1 || d.Events[0].Status != models.StockLow {
		t.Errorf("expected one low event, got %+v", d.Events)
	}
}

func TestDailySummaryDrainsRedisLog(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	mailer := &fakeMailer{}
	a := New(rdb, mailer, analytics.FixedClock(now), zap.NewNop())

	a.StockChanged(ctx, lowProduct())
	out := lowProduct()
	out.CurrentStock = 0
	a.StockChanged(ctx, out)

	expiry := now.AddDate(0, 0, 5)
	expiring := []analytics.ExpiringProduct{{ProductID: 3, Name: "Vaccine", Stock: 4, ExpiryDate: expiry, DaysLeft: 5}}
	if err := a.SendDailySummary(ctx, expiring); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.Wait()

	if mr.Exists(DailyStockLogKey) {
		t.Error("expected daily log to be cleared")
	}
	if len(mailer.sent) != 3 {
		t.Fatalf("expected 2 alerts and 1 summary, got %d emails", len(mailer.sent))
	}

	var summary *sentMail
	for i := range mailer.sent {
		if mailer.sent[i].subject == "Daily Stock Report" {
			summary = &mailer.sent[i]
		}
	}
	if summary == nil {
		t.Fatal("expected a daily summary email")
	}
	if summary.contentType != "text/html" {
		t.Errorf("expected html summary, got %s", summary.contentType)
	}
	if !strings.Contains(summary.body, "Stock alerts: <strong>2</strong>") {
		t.Errorf("expected 2 alerts in summary, got %s", summary.body)
	}
	if !strings.Contains(summary.body, "Vaccine") {
		t.Errorf("expected expiring product in summary, got %s", summary.body)
	}
}

func TestDailySummarySkipsEmptyDigest(t *testing.T) {
	mailer := &fakeMailer{}
	a := New(nil, mailer, analytics.FixedClock(now), zap.NewNop())

	if err := a.SendDailySummary(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.Wait()
	if len(mailer.sent) != 0 {
		t.Errorf("expected no email, got %d", len(mailer.sent))
	}
}

func TestDigestEscapesProductNames(t *testing.T) {
	name := `<script>alert("x")</script>`
	d := Digest{
		Events:   []StockEvent{{ProductID: 1, Name: name, Status: models.StockLow, Stock: 1, Time: now}},
		Expiring: []analytics.ExpiringProduct{{ProductID: 2, Name: "<b>Zinc</b>", Stock: 4, ExpiryDate: now.AddDate(0, 0, 3), DaysLeft: 3}},
	}

	body := d.HTML()
	if strings.Contains(body, "<script>") || strings.Contains(body, "<b><b>Zinc") {
		t.Errorf("expected product names to be escaped, got %s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("expected escaped script tag in body, got %s", body)
	}
}

func TestStockAlertSubjectStaysOnOneLine(t *testing.T) {
	mailer := &fakeMailer{}
	a := New(nil, mailer, analytics.FixedClock(now), zap.NewNop())

	p := lowProduct()
	p.Name = "Insulin\r\nBcc: someone@example.com"
	a.StockChanged(context.Background(), p)
	a.Wait()

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(mailer.sent))
	}
	if strings.ContainsAny(mailer.sent[0].subject, "\r\n") {
		t.Errorf("expected single-line subject, got %q", mailer.sent[0].subject)
	}
}
