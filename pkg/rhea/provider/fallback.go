package provider

// Source names.
const (
	SourceWHO   = "WHO"
	SourceMOHFW = "MOHFW"
)

// Feed categories.
const (
	CategoryGeneral  = "general"
	CategoryAdvisory = "advisory"
)

// WHOFallback is the offline WHO dataset.
func WHOFallback() Feed {
	return Feed{
		Source:   SourceWHO,
		Category: CategoryGeneral,
		Fallback: true,
		Advisories: []Advisory{
			{Title: "COVID-19 Prevention", Content: "COVID-19 spreads through respiratory droplets. Get vaccinated, wear masks in crowded areas, maintain physical distance, wash hands frequently, and avoid touching face with unwashed hands."},
			{Title: "Malaria Prevention", Content: "Malaria is transmitted by mosquitoes. Use bed nets, wear long-sleeved clothing, use insect repellent, eliminate standing water, and take prophylaxis in endemic areas."},
			{Title: "Tuberculosis Treatment", Content: "TB is curable with proper treatment. Complete 6-8 months of medication course. Symptoms include persistent cough for more than 2 weeks, weight loss, night sweats, and fever."},
			{Title: "Diabetes Management", Content: "Monitor blood glucose regularly, follow prescribed diet, exercise daily, take medications as directed, check feet daily, and maintain healthy weight."},
			{Title: "Hypertension Control", Content: "High blood pressure is manageable. Reduce sodium intake, exercise regularly, maintain healthy weight, limit alcohol, quit smoking, and take prescribed medications."},
			{Title: "Mental Health Awareness", Content: "Mental health is important. Practice stress management, maintain social connections, get adequate sleep, seek professional help when needed, and practice mindfulness."},
			{Title: "Seasonal Influenza", Content: "Annual flu vaccination is recommended. Practice good hygiene, cover coughs and sneezes, stay home when sick, and wash hands frequently."},
			{Title: "Maternal Health", Content: "Prenatal care is essential. Attend regular checkups, take folic acid supplements, eat nutritious food, avoid alcohol and smoking during pregnancy."},
		},
	}
}

// MOHFWFallback is the offline MOHFW dataset.
func MOHFWFallback() Feed {
	return Feed{
		Source:   SourceMOHFW,
		Category: CategoryAdvisory,
		Fallback: true,
		Advisories: []Advisory{
			{Title: "Dengue Prevention Advisory", Content: "Prevent dengue by eliminating mosquito breeding sites. Remove stagnant water from containers, use mosquito nets, wear protective clothing, and use repellents during dawn and dusk."},
			{Title: "COVID-19 Vaccination Drive", Content: "COVID-19 vaccines are safe and effective. Get fully vaccinated including booster doses. Follow COVID appropriate behavior even after vaccination."},
			{Title: "Seasonal Disease Alert", Content: "Monsoon brings vector-borne diseases. Prevent water stagnation, maintain hygiene, drink boiled water, eat fresh cooked food, and seek medical help for fever."},
			{Title: "Child Immunization Program", Content: "Complete childhood vaccinations as per schedule. Vaccines prevent serious diseases like polio, measles, hepatitis, and pneumonia. Maintain vaccination records."},
			{Title: "Food Safety Guidelines", Content: "Ensure food safety to prevent foodborne illness. Cook food thoroughly, store at proper temperature, wash hands before eating, and avoid street food during monsoon."},
			{Title: "Tobacco Control Initiative", Content: "Tobacco use causes cancer, heart disease, and stroke. Quit tobacco in all forms. Seek help from healthcare providers and use cessation aids."},
			{Title: "Mental Health Support", Content: "Mental health services are available. Don't hesitate to seek help for depression, anxiety, or stress. Helpline numbers are available 24/7."},
			{Title: "Antimicrobial Resistance", Content: "Use antibiotics responsibly. Take complete course as prescribed, don't share antibiotics, and avoid self-medication to prevent resistance."},
		},
	}
}

// Offline returns static providers for both sources.
func Offline() []Provider {
	return []Provider{NewStatic(WHOFallback()), NewStatic(MOHFWFallback())}
}
