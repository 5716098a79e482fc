package service

import (
	"testing"

	"med-assist-go/internal/model"
)

func validDetails() model.ProfileDetailsDTO {
	return model.ProfileDetailsDTO{
		FullName:    "Jordan Lee",
		Email:       "jordan.lee@email.com",
		Phone:       "+1 (415) 555-0134",
		DateOfBirth: "March 4, 1988",
		BloodType:   "O+",
		Allergies:   []string{"Peanuts"},
		EmergencyContact: model.EmergencyContactDTO{
			Name:         "Casey Lee",
			Phone:        "+1 (415) 555-0199",
			Relationship: "Spouse",
		},
	}
}

func TestValidateProfileDetailsValid(t *testing.T) {
	if errs := ValidateProfileDetails(validDetails()); len(errs) != 0 {
		t.Errorf("合法资料不应有校验错误: %v", errs)
	}
}

func TestValidateProfileDetailsFullName(t *testing.T) {
	d := validDetails()
	d.FullName = ""
	if errs := ValidateProfileDetails(d); len(errs) == 0 || errs[0] != "Full name is required" {
		t.Errorf("空姓名应报必填: %v", errs)
	}

	d.FullName = "A"
	if errs := ValidateProfileDetails(d); len(errs) == 0 || errs[0] != "Full name must be at least 2 characters" {
		t.Errorf("单字符姓名应报长度不足: %v", errs)
	}
}

func TestValidateProfileDetailsEmail(t *testing.T) {
	d := validDetails()
	d.Email = "not-an-email"
	if errs := ValidateProfileDetails(d); len(errs) != 1 || errs[0] != "Please enter a valid email address" {
		t.Errorf("非法邮箱应报格式错误: %v", errs)
	}

	// 邮箱可选，留空不报错
	d.Email = ""
	if errs := ValidateProfileDetails(d); len(errs) != 0 {
		t.Errorf("空邮箱不应报错: %v", errs)
	}
}

func TestValidateProfileDetailsPhone(t *testing.T) {
	d := validDetails()
	d.Phone = "12345"
	errs := ValidateProfileDetails(d)
	if len(errs) == 0 || errs[0] != "Phone number should be between 10 and 15 digits" {
		t.Errorf("过短电话应报位数错误: %v", errs)
	}

	d.Phone = "415-555-abcd"
	errs = ValidateProfileDetails(d)
	found := false
	for _, e := range errs {
		if e == "Phone number should only contain digits and optional + prefix" {
			found = true
		}
	}
	if !found {
		t.Errorf("含字母电话应报字符集错误: %v", errs)
	}
}

func TestValidateProfileDetailsEmergencyContact(t *testing.T) {
	// 任一紧急联系人字段填写则要求全部填写
	d := validDetails()
	d.EmergencyContact = model.EmergencyContactDTO{Name: "Casey Lee"}
	errs := ValidateProfileDetails(d)
	want := map[string]bool{
		"Emergency contact phone is required":        false,
		"Emergency contact relationship is required": false,
	}
	for _, e := range errs {
		if _, ok := want[e]; ok {
			want[e] = true
		}
	}
	for msg, seen := range want {
		if !seen {
			t.Errorf("缺少校验错误 %q, got: %v", msg, errs)
		}
	}

	// 全部留空则不校验紧急联系人
	d.EmergencyContact = model.EmergencyContactDTO{}
	if errs := ValidateProfileDetails(d); len(errs) != 0 {
		t.Errorf("空紧急联系人不应报错: %v", errs)
	}
}
