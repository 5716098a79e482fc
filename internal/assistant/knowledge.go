// Package assistant 实现了确定性的规则助手：命令解释、医疗知识库、
// 报告文本提取与报告分析。全部为纯函数，不依赖任何外部模型服务。
package assistant

import (
	"strings"

	"med-assist-go/internal/model"
)

// MedicalTopic 知识库中的一个健康话题，命中关键词即返回固定回复。
type MedicalTopic struct {
	Keywords            []string
	ClarifyingQuestions []string
	Response            string
	RedFlags            []string
	IsEmergency         bool
}

// MedicalDisclaimer 附在每条医疗回复末尾的固定免责声明。
const MedicalDisclaimer = `
This information is for educational purposes only and does not constitute medical advice, diagnosis, or treatment. Always consult with a qualified healthcare professional for medical concerns.`

// EmergencyGuidance 紧急情况下无条件返回的固定指引文本。
const EmergencyGuidance = `
🚨 SEEK IMMEDIATE MEDICAL ATTENTION

Call emergency services (911 in US) or go to the nearest emergency room if you experience:
• Chest pain or pressure
• Difficulty breathing or shortness of breath
• Sudden severe headache
• Loss of consciousness
• Severe bleeding
• Signs of stroke (facial drooping, arm weakness, speech difficulty)
• Severe allergic reaction
• Suicidal thoughts

This is a medical emergency. Do not wait.`

// medicalKnowledgeBase 按表序匹配，先命中者优先。进程启动后只读。
var medicalKnowledgeBase = []MedicalTopic{
	{
		Keywords: []string{"headache", "head pain", "migraine"},
		ClarifyingQuestions: []string{
			"How long have you had this headache?",
			"On a scale of 1-10, how severe is the pain?",
			"Is it a throbbing, sharp, or dull pain?",
			"Do you have any other symptoms like nausea, vision changes, or sensitivity to light?",
		},
		Response: `Headaches can have many causes:

COMMON TYPES:
• Tension headaches: Dull, aching pain, often from stress or poor posture
• Migraines: Throbbing pain, often with nausea and light sensitivity
• Cluster headaches: Severe pain around one eye
• Sinus headaches: Pressure in forehead/cheeks with congestion

GENERAL MANAGEMENT:
• Rest in a quiet, dark room
• Stay hydrated
• Apply cold or warm compress
• Over-the-counter pain relievers (follow package directions)
• Manage stress and maintain regular sleep schedule

WHEN TO SEEK MEDICAL CARE:
• Sudden severe headache ("worst headache of your life")
• Headache with fever, stiff neck, confusion, or vision changes
• Headache after head injury
• New headache pattern in people over 50

` + MedicalDisclaimer,
		RedFlags: []string{
			`Sudden severe headache ("worst headache of your life")`,
			"Headache with fever, stiff neck, confusion, or vision changes",
			"Headache after head injury",
			"New headache pattern in people over 50",
		},
	},
	{
		Keywords: []string{"fever", "temperature", "hot", "chills"},
		ClarifyingQuestions: []string{
			"What is your temperature reading?",
			"How long have you had the fever?",
			"Do you have any other symptoms (cough, sore throat, body aches)?",
			"Have you been exposed to anyone who is sick?",
		},
		Response: `Fever is your body's natural response to infection or illness.

FEVER RANGES:
• Normal: 97-99°F (36.1-37.2°C)
• Low-grade: 99-100.4°F (37.2-38°C)
• Fever: Above 100.4°F (38°C)
• High fever: Above 103°F (39.4°C)

GENERAL CARE:
• Rest and stay hydrated
• Dress in light clothing
• Take fever-reducing medication if needed (acetaminophen or ibuprofen)
• Monitor temperature regularly
• Cool compress on forehead

WHEN TO SEEK CARE:
• Fever above 103°F (39.4°C)
• Fever lasting more than 3 days
• Fever with severe symptoms
• Infants under 3 months with any fever
• Fever with severe headache and stiff neck
• Fever with difficulty breathing
• Fever with rash

` + MedicalDisclaimer,
		RedFlags: []string{
			"Fever with severe headache and stiff neck",
			"Fever with difficulty breathing",
			"Fever with rash",
			"Fever in infants under 3 months",
		},
	},
	{
		Keywords: []string{"cough", "coughing", "throat"},
		ClarifyingQuestions: []string{
			"How long have you had the cough?",
			"Is it a dry cough or are you coughing up mucus?",
			"Do you have other symptoms like fever, shortness of breath, or chest pain?",
			"Does anything make it better or worse?",
		},
		Response: `Coughs can be caused by various conditions:

COMMON CAUSES:
• Viral infections (cold, flu)
• Allergies
• Asthma
• Acid reflux
• Post-nasal drip

GENERAL CARE:
• Stay hydrated (warm liquids can be soothing)
• Use a humidifier
• Honey (for adults and children over 1 year)
• Avoid irritants (smoke, strong odors)
• Rest your voice
• Over-the-counter cough suppressants or expectorants

SEEK MEDICAL CARE IF:
• Cough lasting more than 3 weeks
• Coughing up blood
• High fever
• Difficulty breathing
• Chest pain
• Severe difficulty breathing
• Cough with high fever and confusion

` + MedicalDisclaimer,
		RedFlags: []string{
			"Coughing up blood",
			"Severe difficulty breathing",
			"Chest pain with cough",
			"Cough with high fever and confusion",
		},
	},
	{
		Keywords: []string{"diabetes", "blood sugar", "insulin", "glucose"},
		ClarifyingQuestions: []string{
			"Have you been diagnosed with diabetes?",
			"What are your typical blood sugar levels?",
			"Are you currently taking any diabetes medications?",
			"What specific information about diabetes are you looking for?",
		},
		Response: `Diabetes is a condition affecting blood sugar regulation:

TYPES:
• Type 1: Body doesn't produce insulin
• Type 2: Body doesn't use insulin properly
• Gestational: Develops during pregnancy

KEY MANAGEMENT:
• Regular blood sugar monitoring
• Healthy diet (balanced carbohydrates, fiber-rich foods)
• Regular physical activity
• Medication as prescribed
• Regular check-ups with healthcare provider

HEALTHY HABITS:
• Eat regular meals
• Choose whole grains, vegetables, lean proteins
• Limit sugary foods and drinks
• Stay physically active (aim for 150 min/week)
• Maintain healthy weight
• Monitor feet and eyes regularly

WORK WITH YOUR HEALTHCARE TEAM:
Diabetes management requires personalized care from doctors, dietitians, and diabetes educators.

SEEK MEDICAL CARE IF:
• Very high blood sugar (over 300 mg/dL)
• Very low blood sugar (under 70 mg/dL) with confusion
• Frequent urination with extreme thirst
• Unexplained weight loss

` + MedicalDisclaimer,
		RedFlags: []string{
			"Very high blood sugar (over 300 mg/dL)",
			"Very low blood sugar (under 70 mg/dL) with confusion",
			"Frequent urination with extreme thirst",
			"Unexplained weight loss",
		},
	},
	{
		Keywords: []string{"blood pressure", "hypertension", "high blood pressure"},
		ClarifyingQuestions: []string{
			"What are your typical blood pressure readings?",
			"Have you been diagnosed with high blood pressure?",
			"Are you currently taking blood pressure medication?",
			"Do you have any symptoms like headaches or dizziness?",
		},
		Response: `Blood pressure measures the force of blood against artery walls:

BLOOD PRESSURE RANGES:
• Normal: Less than 120/80 mmHg
• Elevated: 120-129/<80 mmHg
• High (Stage 1): 130-139/80-89 mmHg
• High (Stage 2): 140+/90+ mmHg
• Hypertensive Crisis: 180+/120+ (seek immediate care)

LIFESTYLE MANAGEMENT:
• Reduce sodium intake (less than 2,300 mg/day)
• Eat potassium-rich foods (bananas, spinach, beans)
• Regular exercise (30 min most days)
• Maintain healthy weight
• Limit alcohol
• Manage stress
• Quit smoking
• Get adequate sleep

MONITORING:
• Check blood pressure regularly
• Keep a log of readings
• Take medications as prescribed
• Regular check-ups with healthcare provider

SEEK IMMEDIATE CARE IF:
• Blood pressure 180/120 or higher
• Severe headache with high blood pressure
• Chest pain with high blood pressure
• Vision changes with high blood pressure

` + MedicalDisclaimer,
		RedFlags: []string{
			"Blood pressure 180/120 or higher",
			"Severe headache with high blood pressure",
			"Chest pain with high blood pressure",
			"Vision changes with high blood pressure",
		},
	},
	{
		Keywords: []string{"medication", "medicine", "drug", "pill", "prescription"},
		ClarifyingQuestions: []string{
			"What medication are you asking about?",
			"Are you currently taking this medication?",
			"Do you have questions about side effects, dosage, or interactions?",
			"Have you discussed this with your pharmacist or doctor?",
		},
		Response: `Medication safety is crucial for effective treatment:

GENERAL MEDICATION SAFETY:
• Take exactly as prescribed
• Don't skip doses or stop without consulting your doctor
• Take at the same time each day if possible
• Store properly (temperature, light, moisture)
• Check expiration dates
• Keep a list of all medications you take

IMPORTANT QUESTIONS TO ASK:
• What is this medication for?
• How and when should I take it?
• What are common side effects?
• What should I avoid (foods, activities, other medications)?
• What if I miss a dose?
• How long will I need to take it?

MEDICATION INTERACTIONS:
• Tell all healthcare providers about ALL medications (including over-the-counter, supplements, herbs)
• Use the same pharmacy when possible
• Ask your pharmacist about interactions

NEVER:
• Share prescription medications
• Take someone else's medication
• Mix medications without consulting a healthcare provider

SEEK IMMEDIATE CARE IF:
• Severe allergic reaction (difficulty breathing, swelling)
• Severe side effects
• Accidental overdose
• Medication error

` + MedicalDisclaimer + `

For specific medication information, always consult your pharmacist or healthcare provider.`,
		RedFlags: []string{
			"Severe allergic reaction (difficulty breathing, swelling)",
			"Severe side effects",
			"Accidental overdose",
			"Medication error",
		},
	},
	{
		Keywords:    []string{"chest pain", "heart pain", "cardiac"},
		IsEmergency: true,
		ClarifyingQuestions: []string{
			"Where exactly is the pain located?",
			"How would you describe the pain (sharp, dull, pressure)?",
			"How long have you had this pain?",
			"Does anything make it better or worse?",
		},
		Response: `🚨 CHEST PAIN CAN BE SERIOUS

CALL 911 IMMEDIATELY IF YOU EXPERIENCE:
• Pain or pressure in the chest
• Pain radiating to arm, jaw, or back
• Shortness of breath
• Sweating, nausea, or lightheadedness
• Feeling of impending doom

DO NOT WAIT - If you're experiencing chest pain, especially with other symptoms, seek immediate medical evaluation.

Chest pain can have many causes, some serious and some not:
• Heart-related (heart attack, angina)
• Lung-related (pneumonia, pulmonary embolism)
• Digestive (acid reflux, heartburn)
• Musculoskeletal (muscle strain, costochondritis)
• Anxiety/panic attacks

` + MedicalDisclaimer,
		RedFlags: []string{
			"Any chest pain or pressure",
			"Chest pain with shortness of breath",
			"Chest pain radiating to arm or jaw",
			"Chest pain with sweating or nausea",
		},
	},
	{
		Keywords: []string{"allergy", "allergies", "allergic", "reaction"},
		ClarifyingQuestions: []string{
			"What are you allergic to?",
			"What symptoms do you experience?",
			"How severe are your reactions?",
			"Do you carry an EpiPen or emergency medication?",
		},
		Response: `Allergies occur when your immune system reacts to a substance:

COMMON ALLERGENS:
• Foods (peanuts, tree nuts, shellfish, eggs, milk)
• Environmental (pollen, dust mites, pet dander, mold)
• Medications (penicillin, aspirin)
• Insect stings

MILD SYMPTOMS:
• Sneezing, runny nose
• Itchy eyes or skin
• Mild rash or hives

MANAGEMENT:
• Avoid known allergens
• Antihistamines for mild symptoms
• Keep environment clean
• Use air filters
• Wash hands frequently

SEVERE ALLERGIC REACTION (ANAPHYLAXIS):
🚨 MEDICAL EMERGENCY - Call 911 if:
• Difficulty breathing or swallowing
• Swelling of face, lips, or throat
• Rapid pulse
• Dizziness or loss of consciousness
• Severe hives or rash

If you have severe allergies:
• Carry an epinephrine auto-injector (EpiPen)
• Wear medical alert bracelet
• Have an allergy action plan
• Inform others of your allergies

` + MedicalDisclaimer,
		RedFlags: []string{
			"Difficulty breathing",
			"Swelling of face, lips, or throat",
			"Rapid pulse with allergic reaction",
			"Dizziness or confusion with allergic reaction",
		},
	},
}

// FindMedicalTopic 按表序查找第一个关键词命中的话题，未命中返回 nil。
func FindMedicalTopic(userInput string) *MedicalTopic {
	normalized := strings.ToLower(userInput)

	for i := range medicalKnowledgeBase {
		topic := &medicalKnowledgeBase[i]
		for _, keyword := range topic.Keywords {
			if strings.Contains(normalized, strings.ToLower(keyword)) {
				return topic
			}
		}
	}

	return nil
}

// NeedsClarification 判断一个很短的医疗问题是否应先反问澄清。
// 回看窗口为最近 4 条消息：助手近期已经提问过则不再反问。
func NeedsClarification(userInput string, history []model.AssistantMessage) bool {
	normalized := strings.TrimSpace(strings.ToLower(userInput))
	words := strings.Fields(normalized)

	if len(words) > 3 {
		return false
	}

	topic := FindMedicalTopic(userInput)
	if topic == nil || len(topic.ClarifyingQuestions) == 0 {
		return false
	}

	recent := history
	if len(recent) > 4 {
		recent = recent[len(recent)-4:]
	}
	for _, msg := range recent {
		if msg.Role == model.MessageRoleAssistant && strings.Contains(msg.Content, "?") {
			return false
		}
	}

	return true
}

// GenerateClarifyingResponse 用话题的前 3 个澄清问题组装反问回复。
func GenerateClarifyingResponse(topic *MedicalTopic) string {
	if len(topic.ClarifyingQuestions) == 0 {
		return topic.Response
	}

	questions := topic.ClarifyingQuestions
	if len(questions) > 3 {
		questions = questions[:3]
	}

	return "I'd like to help you better. Could you provide more details?\n\n• " +
		strings.Join(questions, "\n• ") +
		"\n\nThis will help me give you more specific information."
}

// GenerateMedicalResponse 返回话题的固定回复。紧急话题在正文前
// 附加紧急指引横幅并列出红旗信号。
func GenerateMedicalResponse(topic *MedicalTopic) string {
	if !topic.IsEmergency {
		return topic.Response
	}

	var b strings.Builder
	b.WriteString(EmergencyGuidance)
	b.WriteString("\n\n")
	b.WriteString(topic.Response)
	if len(topic.RedFlags) > 0 {
		b.WriteString("\n\nRED FLAGS:\n• ")
		b.WriteString(strings.Join(topic.RedFlags, "\n• "))
	}
	return b.String()
}

// GetGeneralHealthResponse 通用健康信息菜单，用于泛医疗问题兜底。
func GetGeneralHealthResponse() string {
	return `I can provide general health information on topics like:

• Common symptoms (headaches, fever, cough)
• Chronic conditions (diabetes, high blood pressure)
• Medication safety
• Allergies
• General wellness tips

What would you like to know about?

` + MedicalDisclaimer
}

// GetErrorFallbackResponse 处理出错时返回的固定兜底文案。
func GetErrorFallbackResponse() string {
	return `I ran into an error while processing your request. Please try asking your question again, or rephrase it if needed. I'm here to help!`
}
