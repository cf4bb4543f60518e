package wizard

import "testing"

func twoStep() *Wizard {
	requireName := func(f Fields) map[string]string {
		errs := map[string]string{}
		Require(f, errs, "required", "name")
		return errs
	}
	return New(requireName, nil)
}

func TestNextAdvancesWhenStepPasses(t *testing.T) {
	w := twoStep()
	w.SetField("name", Text("田中"))

	if !w.Next() {
		t.Fatalf("Next() failed: %v", w.Errs())
	}
	if w.Current() != 2 {
		t.Fatalf("expected step 2, got %d", w.Current())
	}
	if w.Errs() != nil {
		t.Fatalf("expected no errors, got %v", w.Errs())
	}
}

func TestFailedNextKeepsStepAndValues(t *testing.T) {
	w := twoStep()
	w.SetField("extra", Text("kept"))

	if w.Next() {
		t.Fatal("Next() should fail with name missing")
	}
	if w.Current() != 1 {
		t.Fatalf("step moved to %d on failed advance", w.Current())
	}
	if w.Errs()["name"] == "" {
		t.Fatalf("expected error for name, got %v", w.Errs())
	}
	if w.Fields().Text("extra") != "kept" {
		t.Fatal("field value lost on failed advance")
	}
}

func TestCorrectionNotRevalidatedUntilNext(t *testing.T) {
	w := twoStep()
	w.Next()
	w.SetField("name", Text("田中"))

	// error from the failed advance is still visible
	if w.Errs()["name"] == "" {
		t.Fatal("error cleared by SetField")
	}
	if !w.Next() {
		t.Fatalf("Next() after correction failed: %v", w.Errs())
	}
	if w.Errs() != nil {
		t.Fatalf("errors survived a passing Next: %v", w.Errs())
	}
}

func TestBackIsUnconditional(t *testing.T) {
	w := twoStep()
	w.SetField("name", Text("田中"))
	w.Next()
	w.Back()

	if w.Current() != 1 {
		t.Fatalf("expected step 1, got %d", w.Current())
	}
	if w.Fields().Text("name") != "田中" {
		t.Fatal("field value lost on Back")
	}

	w.Back()
	if w.Current() != 1 {
		t.Fatal("Back below step 1")
	}
}

func TestNextIsNoOpAtFinalStep(t *testing.T) {
	w := twoStep()
	w.SetField("name", Text("田中"))
	w.Next()

	if w.Next() {
		t.Fatal("Next() advanced past the final step")
	}
	if w.Current() != 2 {
		t.Fatalf("expected step 2, got %d", w.Current())
	}
}

func TestSetFieldOperations(t *testing.T) {
	w := twoStep()
	w.AddToSet("tags", "a")
	w.AddToSet("tags", "b")
	w.AddToSet("tags", "a") // duplicate, ignored

	if got := w.Fields().Set("tags"); len(got) != 2 {
		t.Fatalf("expected 2 tags, got %v", got)
	}

	w.RemoveFromSet("tags", "a")
	got := w.Fields().Set("tags")
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected [b], got %v", got)
	}

	w.RemoveFromSet("tags", "missing") // no-op
	if got := w.Fields().Set("tags"); len(got) != 1 {
		t.Fatalf("expected [b], got %v", got)
	}
}
