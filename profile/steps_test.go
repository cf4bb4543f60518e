package profile

import (
	"testing"

	"nonact/wizard"
)

func TestPreferencesWizardFlow(t *testing.T) {
	w := wizard.New(Steps()...)

	if w.Next() {
		t.Fatal("empty basics step should not pass")
	}
	if w.Errs()["gender"] == "" {
		t.Error("expected error for gender")
	}

	w.SetField("nickname", wizard.Text("たろう"))
	w.SetField("birthdate", wizard.Text("1990-01-01"))
	w.SetField("gender", wizard.Text("male"))
	w.SetField("location", wizard.Text("東京都"))
	if !w.Next() {
		t.Fatalf("basics should pass: %v", w.Errs())
	}

	if w.Next() {
		t.Fatal("interests step without selections should not pass")
	}
	w.AddToSet("interests", "散歩")
	if w.Next() {
		t.Fatal("purposes still missing")
	}
	w.AddToSet("usagePurposes", "話し相手")
	if !w.Next() {
		t.Fatalf("interests step should pass: %v", w.Errs())
	}
}
