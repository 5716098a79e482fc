package service

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"med-assist-go/internal/model"
	"med-assist-go/internal/repository"
	"med-assist-go/pkg/flaker"
	"med-assist-go/pkg/log"

	"gorm.io/gorm"
)

// ValidationError 聚合了一次资料校验的全部错误信息。
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}

// ProfileService 接口定义了用户健康资料的业务操作。
type ProfileService interface {
	GetProfile(userID uint) (model.ProfileDetailsDTO, error)
	SaveProfile(userID uint, details model.ProfileDetailsDTO) error
}

// profileService 是 ProfileService 接口的实现。
type profileService struct {
	profileRepo repository.ProfileRepository
}

// NewProfileService 创建一个新的 ProfileService 实例。
func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

// GetProfile 返回用户资料。尚未填写过资料的用户返回按用户 ID 播种的
// 演示数据，同一用户每次拿到的演示资料完全一致。
func (s *profileService) GetProfile(userID uint) (model.ProfileDetailsDTO, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		demo := flaker.GenerateUserProfile(uint32(userID))
		return model.ProfileDetailsDTO{
			FullName:    demo.Name,
			Email:       demo.Email,
			Phone:       demo.Phone,
			DateOfBirth: demo.DateOfBirth,
			BloodType:   demo.BloodType,
			Allergies:   demo.Allergies,
			EmergencyContact: model.EmergencyContactDTO{
				Name:         demo.EmergencyContact.Name,
				Phone:        demo.EmergencyContact.Phone,
				Relationship: demo.EmergencyContact.Relationship,
			},
		}, nil
	}
	if err != nil {
		return model.ProfileDetailsDTO{}, err
	}

	var allergies []string
	if profile.Allergies != "" {
		if err := json.Unmarshal([]byte(profile.Allergies), &allergies); err != nil {
			// 损坏的过敏原记录按空处理
			log.Errorf("[ProfileService] 解析过敏原记录失败, userID: %d, error: %v", userID, err)
			allergies = nil
		}
	}
	if allergies == nil {
		allergies = []string{}
	}

	return model.ProfileDetailsDTO{
		FullName:    profile.FullName,
		Email:       profile.Email,
		Phone:       profile.Phone,
		DateOfBirth: profile.DateOfBirth,
		BloodType:   profile.BloodType,
		Allergies:   allergies,
		EmergencyContact: model.EmergencyContactDTO{
			Name:         profile.EmergencyContactName,
			Phone:        profile.EmergencyContactPhone,
			Relationship: profile.EmergencyContactRelationship,
		},
		Location: profile.Location,
	}, nil
}

// SaveProfile 校验并保存用户资料。
func (s *profileService) SaveProfile(userID uint, details model.ProfileDetailsDTO) error {
	if errs := ValidateProfileDetails(details); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	allergiesJSON, err := json.Marshal(details.Allergies)
	if err != nil {
		return err
	}

	profile := &model.Profile{
		UserID:                       userID,
		FullName:                     details.FullName,
		Email:                        details.Email,
		Phone:                        details.Phone,
		DateOfBirth:                  details.DateOfBirth,
		BloodType:                    details.BloodType,
		Allergies:                    string(allergiesJSON),
		EmergencyContactName:         details.EmergencyContact.Name,
		EmergencyContactPhone:        details.EmergencyContact.Phone,
		EmergencyContactRelationship: details.EmergencyContact.Relationship,
		Location:                     details.Location,
	}

	return s.profileRepo.Save(profile)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var profilePhonePattern = regexp.MustCompile(`^\+?\d+$`)

// ValidateProfileDetails 校验资料各字段，返回可读的错误信息列表。
func ValidateProfileDetails(details model.ProfileDetailsDTO) []string {
	var errs []string

	fullName := strings.TrimSpace(details.FullName)
	if fullName == "" {
		errs = append(errs, "Full name is required")
	} else if len(fullName) < 2 {
		errs = append(errs, "Full name must be at least 2 characters")
	}

	if strings.TrimSpace(details.Email) != "" {
		if !emailPattern.MatchString(details.Email) {
			errs = append(errs, "Please enter a valid email address")
		}
	}

	if strings.TrimSpace(details.Phone) != "" {
		clean := cleanPhoneNumber(details.Phone)
		if phoneDigitCount(clean) < 10 || phoneDigitCount(clean) > 15 {
			errs = append(errs, "Phone number should be between 10 and 15 digits")
		}
		if !profilePhonePattern.MatchString(clean) {
			errs = append(errs, "Phone number should only contain digits and optional + prefix")
		}
	}

	// 紧急联系人：任一字段填写则要求全部填写
	ec := details.EmergencyContact
	hasEmergencyData := ec.Name != "" || ec.Phone != "" || ec.Relationship != ""
	if hasEmergencyData {
		if strings.TrimSpace(ec.Name) == "" {
			errs = append(errs, "Emergency contact name is required")
		}
		if strings.TrimSpace(ec.Phone) == "" {
			errs = append(errs, "Emergency contact phone is required")
		} else {
			clean := cleanPhoneNumber(ec.Phone)
			if phoneDigitCount(clean) < 10 || phoneDigitCount(clean) > 15 {
				errs = append(errs, "Emergency contact phone should be between 10 and 15 digits")
			}
		}
		if strings.TrimSpace(ec.Relationship) == "" {
			errs = append(errs, "Emergency contact relationship is required")
		}
	}

	return errs
}

func cleanPhoneNumber(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
}

func phoneDigitCount(clean string) int {
	return len(strings.TrimPrefix(clean, "+"))
}
