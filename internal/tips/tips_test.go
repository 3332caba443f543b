package tips

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/liquidevz/rangaone/internal/models"
	"github.com/liquidevz/rangaone/internal/notify"
)

func validForm() TipForm {
	return TipForm{
		Title:       "Reliance breakout",
		StockID:     "stock-1",
		Category:    "premium",
		Content:     "Strong volumes above resistance.",
		Description: "Breakout above 2600 with volume confirmation.",
		Status:      "Active",
		Action:      "buy",
		BuyRange:    "100-200",
		TargetPrice: "250",
		Horizon:     "Medium Term",
		Confidence:  8,
	}
}

func fieldErrors(t *testing.T, err error) ValidationErrors {
	t.Helper()

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	return verrs
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validForm()); err != nil {
		t.Errorf("expected valid form, got %v", err)
	}
}

func TestValidate_BuyRange(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"100-200", true},
		{"99.5-120.25", true},
		{"100- 200-", false},
		{"abc-200", false},
		{"100", false},
		{"100-200-300", false},
	}

	for _, tt := range tests {
		f := validForm()
		f.BuyRange = tt.in

		err := Validate(f)
		if tt.valid && err != nil {
			t.Errorf("buyRange %q: expected valid, got %v", tt.in, err)
		}
		if !tt.valid {
			if err == nil {
				t.Errorf("buyRange %q: expected error", tt.in)
				continue
			}
			if _, ok := fieldErrors(t, err)["buyRange"]; !ok {
				t.Errorf("buyRange %q: expected buyRange error, got %v", tt.in, err)
			}
		}
	}
}

func TestValidate_Confidence(t *testing.T) {
	for _, c := range []int{0, 11, -1} {
		f := validForm()
		f.Confidence = c

		if _, ok := fieldErrors(t, Validate(f))["analystConfidence"]; !ok {
			t.Errorf("confidence %d: expected error", c)
		}
	}

	for _, c := range []int{1, 10} {
		f := validForm()
		f.Confidence = c
		if err := Validate(f); err != nil {
			t.Errorf("confidence %d: expected valid, got %v", c, err)
		}
	}
}

func TestValidate_TargetRequiredOnlyForBuy(t *testing.T) {
	f := validForm()
	f.TargetPrice = ""

	verrs := fieldErrors(t, Validate(f))
	if verrs["targetPrice"] != "Target price is required" {
		t.Errorf("expected required error for targetPrice, got %v", verrs)
	}

	f.Action = "hold"
	if err := Validate(f); err != nil {
		t.Errorf("expected hold without target to pass, got %v", err)
	}
}

func TestValidate_ExitRequiredWhenClosed(t *testing.T) {
	f := validForm()
	f.Action = "hold"
	f.Status = "Closed"

	verrs := fieldErrors(t, Validate(f))
	if _, ok := verrs["exitPrice"]; !ok {
		t.Error("expected exitPrice error")
	}
	if _, ok := verrs["exitStatus"]; !ok {
		t.Error("expected exitStatus error")
	}

	f.ExitPrice = "180"
	f.ExitStatus = "Profit"
	if err := Validate(f); err != nil {
		t.Errorf("expected closed tip with exit fields to pass, got %v", err)
	}
}

func TestValidate_AddMore(t *testing.T) {
	f := validForm()
	f.Action = "add more"

	if _, ok := fieldErrors(t, Validate(f))["addMoreAt"]; !ok {
		t.Error("expected addMoreAt error")
	}
}

func TestValidate_Enums(t *testing.T) {
	f := validForm()
	f.Category = "gold"
	f.Action = "yolo"
	f.Horizon = "Forever"

	verrs := fieldErrors(t, Validate(f))
	for _, field := range []string{"category", "action", "horizon"} {
		if _, ok := verrs[field]; !ok {
			t.Errorf("expected %s error, got %v", field, verrs)
		}
	}
}

func TestValidate_MissingStockReportedWithOtherFields(t *testing.T) {
	f := validForm()
	f.StockID = ""
	f.BuyRange = "100- 200-"
	f.Title = ""

	err := Validate(f)
	verrs := fieldErrors(t, err)
	for _, field := range []string{"stockId", "buyRange", "title"} {
		if _, ok := verrs[field]; !ok {
			t.Errorf("expected %s error, got %v", field, verrs)
		}
	}
	if verrs["stockId"] != "Please select a stock" {
		t.Errorf("stockId message = %q", verrs["stockId"])
	}
	if !errors.Is(err, ErrStockRequired) {
		t.Error("missing stock must match ErrStockRequired")
	}

	f.StockID = "stock-1"
	if errors.Is(Validate(f), ErrStockRequired) {
		t.Error("form with stock must not match ErrStockRequired")
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		price, ref string
		want       string
		ok         bool
	}{
		{"180", "150.00", "20.00%", true},
		{"120", "150", "-20.00%", true},
		{"100", "300", "-66.67%", true},
		{"1", "3", "-66.67%", true},
		{"180", "0", "", false},
		{"180", "-5", "", false},
		{"180", "", "", false},
		{"", "150", "", false},
	}

	for _, tt := range tests {
		got, ok := Percentage(tt.price, tt.ref)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Percentage(%q, %q) = %q, %v; want %q, %v", tt.price, tt.ref, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEditor_AutoCalcTarget(t *testing.T) {
	e := NewEditor()
	e.SelectStock(models.StockSymbol{ID: "1", Symbol: "RELIANCE", CurrentPrice: "150.00"})

	if err := e.SetField("targetPrice", "180"); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	if e.Form.TargetPercentage != "20.00%" {
		t.Errorf("expected 20.00%%, got %q", e.Form.TargetPercentage)
	}
	if e.Form.StockID != "1" {
		t.Errorf("expected stock id to be set, got %q", e.Form.StockID)
	}
}

func TestEditor_ManualFreezesPercentage(t *testing.T) {
	e := NewEditor()
	e.SelectStock(models.StockSymbol{ID: "1", CurrentPrice: "100"})

	if err := e.SetField("targetPercentage", "5%"); !errors.Is(err, ErrAutoCalculated) {
		t.Errorf("expected ErrAutoCalculated while auto is on, got %v", err)
	}

	e.SetAutoCalc(AutoTarget, false)
	if err := e.SetField("targetPercentage", "12.5%"); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	e.SetField("targetPrice", "200")
	if e.Form.TargetPercentage != "12.5%" {
		t.Errorf("expected manual value to stay, got %q", e.Form.TargetPercentage)
	}

	e.SetAutoCalc(AutoTarget, true)
	if e.Form.TargetPercentage != "100.00%" {
		t.Errorf("expected recalculation when auto turned back on, got %q", e.Form.TargetPercentage)
	}
}

func TestEditor_ZeroReferenceLeavesField(t *testing.T) {
	e := NewEditor()
	e.SetAutoCalc(AutoExit, false)
	e.SetField("exitStatusPercentage", "3%")
	e.SetAutoCalc(AutoExit, true)
	e.SelectStock(models.StockSymbol{ID: "1", CurrentPrice: "0"})

	e.SetField("exitPrice", "50")

	if e.Form.ExitStatusPercentage != "3%" {
		t.Errorf("expected field unchanged for zero reference, got %q", e.Form.ExitStatusPercentage)
	}
}

func TestEditor_SetFieldErrors(t *testing.T) {
	e := NewEditor()

	if err := e.SetField("nope", "x"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
	if err := e.SetField("analystConfidence", "7.5"); err == nil {
		t.Error("expected error for non-integer confidence")
	}
}

func TestToPayload(t *testing.T) {
	f := validForm()
	f.TipURL = "https://example.com/report.pdf"

	tip, err := ToPayload(f)
	if err != nil {
		t.Fatalf("ToPayload: %v", err)
	}

	if len(tip.Content) != 1 || tip.Content[0].Key != "main" || tip.Content[0].Value != f.Content {
		t.Errorf("unexpected content %+v", tip.Content)
	}
	if len(tip.DownloadLinks) != 1 || tip.DownloadLinks[0].URL != f.TipURL {
		t.Errorf("unexpected download links %+v", tip.DownloadLinks)
	}

	back := FromTip(tip)
	if back.Content != f.Content || back.TipURL != f.TipURL {
		t.Errorf("FromTip lost data: %+v", back)
	}

	f.StockID = ""
	if _, err := ToPayload(f); !errors.Is(err, ErrStockRequired) {
		t.Errorf("expected ErrStockRequired, got %v", err)
	}
}

type fakeStore struct {
	created, updated int
	err              error
}

func (s *fakeStore) CreateTip(ctx context.Context, tip models.Tip) (models.Tip, error) {
	if s.err != nil {
		return models.Tip{}, s.err
	}
	s.created++
	tip.ID = "new-id"
	return tip, nil
}

func (s *fakeStore) UpdateTip(ctx context.Context, id string, tip models.Tip) (models.Tip, error) {
	if s.err != nil {
		return models.Tip{}, s.err
	}
	s.updated++
	return tip, nil
}

type recorder struct {
	got []notify.Notification
}

func (r *recorder) Notify(ctx context.Context, n notify.Notification) {
	r.got = append(r.got, n)
}

func newTestPipeline(store Store, rec *recorder) *Pipeline {
	return NewPipeline(store, rec, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPipeline_CreateVsUpdate(t *testing.T) {
	store := &fakeStore{}
	rec := &recorder{}
	p := newTestPipeline(store, rec)

	e := NewEditor()
	e.Form = validForm()

	created, err := p.Submit(context.Background(), e)
	if err != nil {
		t.Fatalf("Submit create: %v", err)
	}
	if created.ID != "new-id" || store.created != 1 || store.updated != 0 {
		t.Errorf("expected create path, got created=%d updated=%d", store.created, store.updated)
	}
	if e.Form.Title != "" || e.Selected != nil {
		t.Error("expected editor reset after success")
	}

	e.Form = validForm()
	e.Form.ID = "existing"
	if _, err := p.Submit(context.Background(), e); err != nil {
		t.Fatalf("Submit update: %v", err)
	}
	if store.updated != 1 || store.created != 1 {
		t.Errorf("expected update path, got created=%d updated=%d", store.created, store.updated)
	}

	if len(rec.got) != 2 || rec.got[0].Action != "tip_created" || rec.got[1].Action != "tip_updated" {
		t.Errorf("unexpected notifications %+v", rec.got)
	}
}

func TestPipeline_FailureKeepsForm(t *testing.T) {
	store := &fakeStore{err: errors.New("backend returned 500")}
	rec := &recorder{}
	p := newTestPipeline(store, rec)

	e := NewEditor()
	e.Form = validForm()
	e.SearchText = "REL"

	if _, err := p.Submit(context.Background(), e); err == nil {
		t.Fatal("expected error")
	}

	if e.Form.Title != validForm().Title || e.SearchText != "REL" {
		t.Error("expected entered values to stay intact")
	}
	if len(rec.got) != 1 || rec.got[0].Level != notify.LevelError {
		t.Errorf("expected error notification, got %+v", rec.got)
	}
}

func TestPipeline_ValidationBeforeBackend(t *testing.T) {
	store := &fakeStore{}
	rec := &recorder{}
	p := newTestPipeline(store, rec)

	f := validForm()
	f.TargetPrice = ""

	_, err := p.Save(context.Background(), f)
	if _, ok := fieldErrors(t, err)["targetPrice"]; !ok {
		t.Errorf("expected targetPrice error, got %v", err)
	}
	if store.created != 0 {
		t.Error("expected no backend call on validation failure")
	}
	if rec.got[0].Message != "Please fix the highlighted fields" {
		t.Errorf("unexpected message %q", rec.got[0].Message)
	}
}

func TestPipeline_MissingStock(t *testing.T) {
	rec := &recorder{}
	p := newTestPipeline(&fakeStore{}, rec)

	f := validForm()
	f.StockID = ""

	if _, err := p.Save(context.Background(), f); !errors.Is(err, ErrStockRequired) {
		t.Fatalf("expected ErrStockRequired, got %v", err)
	}
	if rec.got[0].Message != "Please select a stock" {
		t.Errorf("unexpected message %q", rec.got[0].Message)
	}
}
