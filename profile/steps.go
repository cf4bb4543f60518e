package profile

import "nonact/wizard"

// Steps declares the rental-preferences wizard: basic info, interests and
// purposes, free-text wishes.
func Steps() []wizard.StepValidator {
	return []wizard.StepValidator{stepBasics, stepInterests, nil}
}

func stepBasics(f wizard.Fields) map[string]string {
	errs := map[string]string{}
	wizard.Require(f, errs, "必須項目です", "nickname", "birthdate", "location")
	if f.Text("gender") == "" {
		errs["gender"] = "性別を選択してください"
	}
	return errs
}

func stepInterests(f wizard.Fields) map[string]string {
	errs := map[string]string{}
	if len(f.Set("interests")) == 0 {
		errs["interests"] = "少なくとも1つの趣味・興味を選択してください"
	}
	if len(f.Set("usagePurposes")) == 0 {
		errs["usagePurposes"] = "少なくとも1つの利用用途を選択してください"
	}
	return errs
}
