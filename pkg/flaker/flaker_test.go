package flaker

import (
	"reflect"
	"regexp"
	"strings"
	"testing"
)

func TestSeededRandomDeterministic(t *testing.T) {
	a := NewSeededRandom(42)
	b := NewSeededRandom(42)

	for i := 0; i < 100; i++ {
		va, vb := a.Next(), b.Next()
		if va != vb {
			t.Fatalf("第 %d 次调用结果不一致: %v != %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("Next() 超出 [0,1) 区间: %v", va)
		}
	}
}

func TestSeededRandomDifferentSeeds(t *testing.T) {
	a := NewSeededRandom(1)
	b := NewSeededRandom(2)

	same := true
	for i := 0; i < 10; i++ {
		if a.Next() != b.Next() {
			same = false
			break
		}
	}
	if same {
		t.Error("不同种子前 10 个值完全相同")
	}
}

func TestNextIntRange(t *testing.T) {
	rng := NewSeededRandom(7)
	for i := 0; i < 1000; i++ {
		v := rng.NextInt(200, 999)
		if v < 200 || v > 999 {
			t.Fatalf("NextInt(200, 999) 越界: %d", v)
		}
	}
}

func TestGenerateUserProfileDeterministic(t *testing.T) {
	p1 := GenerateUserProfile(42)
	p2 := GenerateUserProfile(42)

	if !reflect.DeepEqual(p1, p2) {
		t.Errorf("同一种子生成的资料不一致:\n%+v\n%+v", p1, p2)
	}
}

func TestGenerateUserProfileShape(t *testing.T) {
	p := GenerateUserProfile(42)

	if len(strings.Fields(p.Name)) != 2 {
		t.Errorf("姓名应为两个单词: %q", p.Name)
	}

	if !strings.Contains(p.Email, "@") {
		t.Errorf("邮箱格式不正确: %q", p.Email)
	}
	namePart := strings.Split(p.Email, "@")[0]
	if namePart != strings.ReplaceAll(strings.ToLower(p.Name), " ", ".") {
		t.Errorf("邮箱用户名应由姓名推导: name=%q email=%q", p.Name, p.Email)
	}

	phoneRe := regexp.MustCompile(`^\+1 \(\d{3}\) \d{3}-\d{4}$`)
	if !phoneRe.MatchString(p.Phone) {
		t.Errorf("电话格式不正确: %q", p.Phone)
	}

	dobRe := regexp.MustCompile(`^[A-Z][a-z]+ \d{1,2}, (19[5-9]\d|200[0-5])$`)
	if !dobRe.MatchString(p.DateOfBirth) {
		t.Errorf("出生日期格式不正确: %q", p.DateOfBirth)
	}

	validBlood := map[string]bool{"A+": true, "A-": true, "B+": true, "B-": true, "AB+": true, "AB-": true, "O+": true, "O-": true}
	if !validBlood[p.BloodType] {
		t.Errorf("未知血型: %q", p.BloodType)
	}

	if len(p.Allergies) > 4 {
		t.Errorf("过敏原不应超过 4 项: %v", p.Allergies)
	}
	seen := map[string]bool{}
	for _, a := range p.Allergies {
		if seen[a] {
			t.Errorf("过敏原重复: %q", a)
		}
		seen[a] = true
	}

	if p.EmergencyContact.Name == "" || p.EmergencyContact.Phone == "" || p.EmergencyContact.Relationship == "" {
		t.Errorf("紧急联系人字段不完整: %+v", p.EmergencyContact)
	}
}
