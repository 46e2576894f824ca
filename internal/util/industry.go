package util

// industryMap maps the numeric industry codes used by the submission form to
// display labels.
var industryMap = map[string]string{
	"1":   "Technology",
	"2":   "Healthcare",
	"3":   "Finance",
	"4":   "Education",
	"5":   "Manufacturing",
	"6":   "Retail",
	"7":   "Real Estate",
	"8":   "Consulting",
	"9":   "Marketing & Advertising",
	"10":  "Legal Services",
	"11":  "Engineering",
	"12":  "Construction",
	"13":  "Transportation & Logistics",
	"14":  "Media & Entertainment",
	"15":  "Government",
	"16":  "Non-profit",
	"17":  "Hospitality & Tourism",
	"18":  "Energy & Utilities",
	"19":  "Telecommunications",
	"20":  "Pharmaceuticals",
	"21":  "Insurance",
	"22":  "Banking",
	"23":  "Automotive",
	"24":  "Aerospace",
	"25":  "Agriculture",
	"26":  "Food & Beverage",
	"27":  "Fashion & Apparel",
	"28":  "Sports & Recreation",
	"29":  "Publishing",
	"30":  "E-commerce",
	"31":  "Commodities Trading",
	"32":  "Investment Banking",
	"33":  "Private Equity",
	"34":  "Venture Capital",
	"35":  "Hedge Funds",
	"36":  "Asset Management",
	"37":  "Wealth Management",
	"38":  "Investment Management",
	"39":  "Corporate Banking",
	"40":  "Commercial Banking",
	"41":  "Credit & Lending",
	"42":  "Fintech",
	"43":  "Cryptocurrency",
	"44":  "Blockchain",
	"45":  "Cybersecurity",
	"46":  "Data Science",
	"47":  "Artificial Intelligence",
	"48":  "Cloud Computing",
	"49":  "Software Development",
	"50":  "Product Management",
	"51":  "Digital Marketing",
	"52":  "Social Media",
	"53":  "Content Creation",
	"54":  "Influencer Marketing",
	"55":  "Public Relations",
	"56":  "Event Management",
	"57":  "Project Management",
	"58":  "Business Development",
	"59":  "Sales",
	"60":  "Customer Success",
	"61":  "Human Resources",
	"62":  "Talent Acquisition",
	"63":  "Executive Search",
	"64":  "Management Consulting",
	"65":  "Strategy Consulting",
	"66":  "Operations Consulting",
	"67":  "IT Consulting",
	"68":  "Digital Transformation",
	"69":  "Change Management",
	"70":  "Risk Management",
	"71":  "Compliance",
	"72":  "Audit",
	"73":  "Tax Advisory",
	"74":  "Accounting",
	"75":  "Corporate Law",
	"76":  "Intellectual Property",
	"77":  "Mergers & Acquisitions",
	"78":  "Securities Law",
	"79":  "Employment Law",
	"80":  "Litigation",
	"81":  "Arbitration",
	"82":  "Regulatory Affairs",
	"83":  "Clinical Research",
	"84":  "Medical Devices",
	"85":  "Biotechnology",
	"86":  "Telemedicine",
	"87":  "Health Insurance",
	"88":  "Mental Health",
	"89":  "Fitness & Wellness",
	"90":  "Nutrition",
	"91":  "Oil & Gas",
	"92":  "Renewable Energy",
	"93":  "Solar Energy",
	"94":  "Wind Energy",
	"95":  "Nuclear Energy",
	"96":  "Mining",
	"97":  "Forestry",
	"98":  "Fishing",
	"99":  "Water Management",
	"100": "Waste Management",
	"101": "Environmental Services",
	"102": "Sustainability",
	"103": "Carbon Trading",
	"104": "ESG Investing",
	"105": "Impact Investing",
	"106": "Microfinance",
	"107": "International Development",
	"108": "Humanitarian Aid",
	"109": "Social Impact",
	"110": "Grant Writing",
	"111": "Fundraising",
	"112": "Philanthropy",
	"113": "Corporate Social Responsibility",
	"114": "Diversity & Inclusion",
	"115": "Training & Development",
}

// ResolveIndustry turns the form's industry value into a display label.
// "other" means the submitter typed their own industry, which is returned
// verbatim. Values that are neither a known code nor "other" are assumed to
// be labels already.
func ResolveIndustry(industry, custom string) string {
	if industry == "other" {
		return custom
	}
	if label, ok := industryMap[industry]; ok {
		return label
	}
	return industry
}
