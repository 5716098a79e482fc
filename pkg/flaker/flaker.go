// Package flaker 是一个确定性的假数据生成器，用于生成演示用的用户资料。
// 相同种子永远生成相同的数据，不依赖任何外部服务。
package flaker

import (
	"fmt"
	"math"
	"strings"
)

// SeededRandom 基于 mulberry32 算法的带种子伪随机数生成器。
type SeededRandom struct {
	state uint32
}

// NewSeededRandom 用给定种子创建一个生成器。
func NewSeededRandom(seed uint32) *SeededRandom {
	return &SeededRandom{state: seed}
}

// Next 返回 [0, 1) 区间内的下一个伪随机数。
func (r *SeededRandom) Next() float64 {
	r.state += 0x6d2b79f5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296
}

// NextInt 返回 [min, max] 区间内的伪随机整数。
func (r *SeededRandom) NextInt(min, max int) int {
	return int(math.Floor(r.Next()*float64(max-min+1))) + min
}

// Pick 从切片中选择一个元素。
func (r *SeededRandom) Pick(items []string) string {
	return items[int(math.Floor(r.Next()*float64(len(items))))]
}

var firstNames = []string{
	"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Avery", "Quinn",
	"Sam", "Jamie", "Drew", "Blake", "Cameron", "Skyler", "Reese", "Parker",
	"Sage", "River", "Dakota", "Phoenix", "Rowan", "Finley", "Emerson", "Hayden",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Thompson", "White", "Harris",
}

var emailDomains = []string{
	"email.com", "mail.com", "inbox.com", "webmail.com", "post.com",
	"message.com", "connect.com", "online.com", "net.com", "digital.com",
}

var bloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

var allergyPool = []string{
	"Penicillin", "Peanuts", "Tree nuts", "Shellfish", "Eggs", "Milk",
	"Soy", "Wheat", "Fish", "Latex", "Sulfa drugs", "Aspirin",
	"Ibuprofen", "Bee stings", "Pollen", "Dust mites",
}

var relationships = []string{
	"Spouse", "Partner", "Parent", "Sibling", "Child", "Friend",
	"Relative", "Guardian", "Neighbor", "Colleague",
}

var months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// EmergencyContact 紧急联系人信息。
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// UserProfile 生成的演示用户资料。
type UserProfile struct {
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	DateOfBirth      string           `json:"dateOfBirth"`
	BloodType        string           `json:"bloodType"`
	Allergies        []string         `json:"allergies"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
}

// GenerateName 生成 "First Last" 形式的姓名。
func GenerateName(rng *SeededRandom) string {
	return rng.Pick(firstNames) + " " + rng.Pick(lastNames)
}

// GenerateEmail 根据姓名生成邮箱地址。
func GenerateEmail(rng *SeededRandom, name string) string {
	namePart := strings.ReplaceAll(strings.ToLower(name), " ", ".")
	return namePart + "@" + rng.Pick(emailDomains)
}

// GeneratePhone 生成北美格式电话号码。
func GeneratePhone(rng *SeededRandom) string {
	areaCode := rng.NextInt(200, 999)
	exchange := rng.NextInt(200, 999)
	number := rng.NextInt(1000, 9999)
	return fmt.Sprintf("+1 (%d) %d-%d", areaCode, exchange, number)
}

// GenerateDateOfBirth 生成 "Month D, YYYY" 形式的出生日期。
func GenerateDateOfBirth(rng *SeededRandom) string {
	month := rng.Pick(months)
	day := rng.NextInt(1, 28)
	year := rng.NextInt(1950, 2005)
	return fmt.Sprintf("%s %d, %d", month, day, year)
}

// GenerateBloodType 生成血型。
func GenerateBloodType(rng *SeededRandom) string {
	return rng.Pick(bloodTypes)
}

// GenerateAllergies 从过敏原池中不重复地抽取 0-4 项。
func GenerateAllergies(rng *SeededRandom) []string {
	count := rng.NextInt(0, 4)
	if count == 0 {
		return []string{}
	}

	selected := make([]string, 0, count)
	available := make([]string, len(allergyPool))
	copy(available, allergyPool)

	for i := 0; i < count && len(available) > 0; i++ {
		index := rng.NextInt(0, len(available)-1)
		selected = append(selected, available[index])
		available = append(available[:index], available[index+1:]...)
	}

	return selected
}

// GenerateEmergencyContact 生成紧急联系人。
func GenerateEmergencyContact(rng *SeededRandom) EmergencyContact {
	return EmergencyContact{
		Name:         GenerateName(rng),
		Phone:        GeneratePhone(rng),
		Relationship: rng.Pick(relationships),
	}
}

// GenerateUserProfile 用给定种子生成完整的演示用户资料。
// 生成顺序固定，保证同一种子下结果可复现。
func GenerateUserProfile(seed uint32) UserProfile {
	rng := NewSeededRandom(seed)

	name := GenerateName(rng)
	email := GenerateEmail(rng, name)
	phone := GeneratePhone(rng)
	dateOfBirth := GenerateDateOfBirth(rng)
	bloodType := GenerateBloodType(rng)
	allergies := GenerateAllergies(rng)
	emergencyContact := GenerateEmergencyContact(rng)

	return UserProfile{
		Name:             name,
		Email:            email,
		Phone:            phone,
		DateOfBirth:      dateOfBirth,
		BloodType:        bloodType,
		Allergies:        allergies,
		EmergencyContact: emergencyContact,
	}
}
