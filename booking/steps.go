package booking

import (
	"time"

	"nonact/wizard"
)

// Steps returns the validators for the four-step booking flow:
// staff pick, slot candidates, plan details, confirmation.
func Steps() []wizard.StepValidator {
	return []wizard.StepValidator{stepStaff, stepSlots, stepPlan, nil}
}

func stepStaff(f wizard.Fields) map[string]string {
	errs := map[string]string{}
	wizard.Require(f, errs, "スタッフを選択してください", "staffId")
	return errs
}

func stepSlots(f wizard.Fields) map[string]string {
	errs := map[string]string{}
	slots := f.Set("slots")
	if len(slots) == 0 {
		errs["slots"] = "希望日時を1つ以上選択してください"
		return errs
	}
	if len(slots) > 3 {
		errs["slots"] = "希望日時は3つまで選択できます"
		return errs
	}
	for _, s := range slots {
		if _, err := time.Parse("2006-01-02 15:04", s); err != nil {
			errs["slots"] = "日時の形式が正しくありません"
			break
		}
	}
	return errs
}

func stepPlan(f wizard.Fields) map[string]string {
	errs := map[string]string{}
	if d := f.Number("duration"); d < 1 || d > 4 {
		errs["duration"] = "利用時間は1〜4時間で指定してください"
	}
	wizard.Require(f, errs, "エリアを選択してください", "locationTier")
	wizard.Require(f, errs, "お支払い方法を選択してください", "paymentMethod")
	return errs
}
