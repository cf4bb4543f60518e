package register

import (
	"strconv"
	"strings"

	"nonact/wizard"
)

// Steps declares the registration wizard: basic info, profile, complete.
// Step validators only see the field subset their step owns.
func Steps() []wizard.StepValidator {
	return []wizard.StepValidator{stepBasicInfo, stepProfile, nil}
}

func stepBasicInfo(f wizard.Fields) map[string]string {
	errs := map[string]string{}
	wizard.Require(f, errs, "必須項目です", "name", "email")

	if email := f.Text("email"); email != "" && !strings.Contains(email, "@") {
		errs["email"] = "メールアドレスの形式が正しくありません"
	}
	if age := f.Text("age"); age != "" {
		if n, err := strconv.Atoi(age); err != nil || n < 18 {
			errs["age"] = "18歳以上である必要があります"
		}
	}
	return errs
}

func stepProfile(f wizard.Fields) map[string]string {
	errs := map[string]string{}
	wizard.Require(f, errs, "必須項目です", "hobbies", "description")
	return errs
}
