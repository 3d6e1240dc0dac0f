package seed

import "github.com/jonathan/career-compass/internal/types"

// Jobs returns the fixed listing used to populate an empty jobs table.
func Jobs() []types.JobListing {
	return []types.JobListing{
		{
			Title:     "Multiple Roles",
			Company:   "HCLTech",
			Location:  "Across India",
			Tags:      []string{"Graduate", "Post Graduate", "4.5-18 LPA"},
			ApplyLink: "https://tinyurl.com/bdd45379",
		},
		{
			Title:     "National Qualifier Test (NQT) 2025",
			Company:   "TCS",
			Location:  "Across India",
			Tags:      []string{"2021-2027 Batch", "Any Degree", "Up to 19 LPA"},
			ApplyLink: "https://yt.openinapp.co/0m6rt",
		},
		{
			Title:     "Software Application Development Apprentice",
			Company:   "Google",
			Location:  "Bengaluru, Hyderabad, Gurugram",
			Tags:      []string{"Apprentice", "Freshers", "Bachelor's Degree"},
			ApplyLink: "https://freshershunt.in/google-software-application-development-apprenticeship/",
		},
		{
			Title:     "Data Analytics Apprentice",
			Company:   "Google",
			Location:  "Bengaluru, Hyderabad, Gurugram",
			Tags:      []string{"Apprentice", "Data Analytics", "Freshers"},
			ApplyLink: "https://freshershunt.in/google-data-analytics-apprenticeship/",
		},
		{
			Title:     "Web Solutions Engineer Intern",
			Company:   "Google",
			Location:  "Hyderabad",
			Tags:      []string{"Internship", "Web Solutions", "Freshers"},
			ApplyLink: "https://freshershunt.in/google-internship-web-solutions-engineer-intern/",
		},
		{
			Title:     "Multiple Roles",
			Company:   "Mphasis",
			Location:  "Across India",
			Tags:      []string{"Graduate", "Post Graduate", "4.5-22 LPA"},
			ApplyLink: "https://pdlink.in/4omWEqn",
		},
		{
			Title:     "New Grad Software Engineer",
			Company:   "Stripe",
			Location:  "Bengaluru",
			Tags:      []string{"2026 Batch", "New Grad", "₹61.3 LPA"},
			ApplyLink: "https://freshershunt.in/stripe-careers-2026-software-engineering-new-grad/",
		},
		{
			Title:     "Software Engineering AMTS",
			Company:   "Salesforce",
			Location:  "Bangalore & Hyderabad",
			Tags:      []string{"2026 Batch", "Freshers", "₹15-36 LPA"},
			ApplyLink: "https://freshershunt.in/salesforce-off-campus-drive-2025/",
		},
		{
			Title:     "Software Engineer Intern",
			Company:   "Stripe",
			Location:  "Bengaluru",
			Tags:      []string{"Internship", "Recent Batches", "Freshers"},
			ApplyLink: "https://freshershunt.in/stripe-internship-software-engineer-intern/",
		},
		{
			Title:     "Software Engineer - Summer Internship",
			Company:   "CISCO",
			Location:  "Bangalore",
			Tags:      []string{"2027 Pass out", "Internship", "₹41K/month"},
			ApplyLink: "https://freshershunt.in/cisco-internship-2025/",
		},
		{
			Title:     "Apprenticeship 2025",
			Company:   "ISRO",
			Location:  "Hyderabad",
			Tags:      []string{"Diploma", "BE/B.Tech", "Any Graduate"},
			ApplyLink: "https://freshershunt.in/isro-apprentices-2025/",
		},
		{
			Title:     "Software Engineer",
			Company:   "HCL Tech",
			Location:  "Hyderabad",
			Tags:      []string{"0-2 Years Exp", "4-8 LPA", "Software"},
			ApplyLink: "https://tinyurl.com/42c457hc",
		},
		{
			Title:     "Software Development Engineer I",
			Company:   "Airtel",
			Location:  "Gurugram",
			Tags:      []string{"0-1 Year Exp", "10-15 LPA", "SDE"},
			ApplyLink: "https://tinyurl.com/45fjjjpd",
		},
		{
			Title:     "Graduate Engineer Trainee",
			Company:   "HCLTech",
			Location:  "PAN India",
			Tags:      []string{"2025 Batch", "Freshers", "₹5 LPA"},
			ApplyLink: "https://freshershunt.in/hcltech-hiring-graduate-engineer-trainee/",
		},
		{
			Title:     "Analyst - Data Science",
			Company:   "American Express",
			Location:  "Bengaluru & Gurgaon",
			Tags:      []string{"Bachelors/Masters", "Freshers", "₹4-7 LPA"},
			ApplyLink: "https://tinyurl.com/bdd45379",
		},
	}
}
