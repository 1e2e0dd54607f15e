package draft

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a professional resume writer and career coach with 10+ years of experience.
You create realistic, compelling resumes that help candidates stand out.
You are accurate, professional, and focus on achievements and results.`

// payloadSchema is the exact JSON shape the collaborator must return; it
// mirrors models.DraftPayload.
const payloadSchema = `{
  "personal_info": {
    "first_name": "string",
    "last_name": "string",
    "headline": "string (e.g., 'Senior Software Engineer')",
    "email": "string (realistic email)",
    "phone": "string (optional)",
    "city": "string",
    "country": "string",
    "summary": "string (professional summary, 3-5 sentences)",
    "website": "string (optional)",
    "linkedin_url": "string (optional)",
    "github_url": "string (optional)",
    "photo_url": "string (leave empty)"
  },
  "work_experience": [
    {
      "position_title": "string",
      "company_name": "string",
      "city": "string",
      "country": "string",
      "start_date": "string (YYYY-MM)",
      "end_date": "string (YYYY-MM or empty for current)",
      "is_current": "boolean",
      "description": "string (optional)",
      "bullets": ["string", "string", "string"]
    }
  ],
  "education": [
    {
      "degree": "string",
      "field_of_study": "string",
      "school_name": "string",
      "city": "string",
      "country": "string",
      "start_date": "string (YYYY or YYYY-MM)",
      "end_date": "string (YYYY or YYYY-MM)",
      "is_current": "boolean",
      "description": "string (optional)"
    }
  ],
  "skill_categories": [
    {
      "name": "string",
      "items": [
        {"name": "string", "level": "string (beginner|intermediate|professional|expert)"}
      ]
    }
  ],
  "strengths": ["string", "string", "string"],
  "hobbies": ["string", "string"],
  "custom_sections": [
    {
      "type": "string (achievements|projects|awards|certificates|languages|custom)",
      "title": "string",
      "items": [
        {
          "title": "string",
          "subtitle": "string (optional)",
          "meta": "string (optional)",
          "description": "string",
          "start_date": "string (optional)",
          "end_date": "string (optional)",
          "is_current": "boolean"
        }
      ]
    }
  ]
}`

// buildPrompt assembles the user instruction from drafting input and the
// principal's known facts.
func buildPrompt(input Input, facts PrincipalFacts) string {
	name := input.Name
	if name == "" {
		name = strings.TrimSpace(facts.FirstName + " " + facts.LastName)
	}

	parts := []string{
		"You are an expert resume writer. Generate a professional resume with the following details:",
		"",
		fmt.Sprintf("Name: %s", name),
		fmt.Sprintf("Target Role: %s", input.TargetRole),
	}

	if input.JobDescription != "" {
		parts = append(parts, fmt.Sprintf("Job Description Context: %s", input.JobDescription))
	}
	if input.ExperienceYears > 0 {
		parts = append(parts, fmt.Sprintf("Experience Level: %s (%d years)",
			seniorityLevel(input.ExperienceYears), input.ExperienceYears))
	}
	if input.Seniority != "" {
		parts = append(parts, fmt.Sprintf("Desired Seniority: %s", input.Seniority))
	}
	if len(input.Skills) > 0 {
		parts = append(parts, fmt.Sprintf("Key Skills: %s", strings.Join(input.Skills, ", ")))
	}
	if input.Location != "" {
		parts = append(parts, fmt.Sprintf("Location: %s", input.Location))
	}
	if input.Tone != "" {
		parts = append(parts, fmt.Sprintf("Tone: %s", input.Tone))
	}
	if input.Language != "" {
		parts = append(parts, fmt.Sprintf("Output Language: %s", input.Language))
	}

	parts = append(parts,
		"",
		"Requirements:",
		"1. Generate realistic but fictional content that matches the target role and experience",
		"2. Create a compelling professional summary (3-5 sentences)",
		"3. Include 2-4 work experiences with 3-5 bullet points each",
		"4. Include 1-2 education entries",
		"5. Organize skills into logical categories with appropriate skill levels",
		"6. Include 4-6 professional strengths",
		"7. Include 2-4 relevant hobbies/interests",
		"8. Include 1-2 custom sections (e.g., Projects, Certifications)",
		"9. All dates should be in YYYY-MM or YYYY format",
		"10. Be specific and quantitative where possible (metrics, percentages)",
		"",
		"Output must be in this exact JSON format:",
		payloadSchema,
	)

	return strings.Join(parts, "\n")
}

// rewriteSystemPrompt is the instruction for section rewrites.
func rewriteSystemPrompt(tone string) string {
	return fmt.Sprintf(`You are a professional resume editor. Rewrite the following content based on the user's request.
Tone: %s

Instructions:
1. Keep the same meaning and key information
2. Improve clarity and impact
3. Use professional language
4. Maintain similar length
5. Focus on achievements and results
6. Return only the rewritten text, no explanations`, tone)
}

// seniorityLevel maps years of experience to a seniority label.
func seniorityLevel(years int) string {
	switch {
	case years <= 2:
		return "Junior"
	case years <= 5:
		return "Mid-level"
	case years <= 10:
		return "Senior"
	default:
		return "Expert"
	}
}
