package fetch

import (
	"net/url"
	"strings"
)

// Platform identifies an applicant tracking system hosting a job posting.
type Platform string

const (
	PlatformGreenhouse      Platform = "greenhouse"
	PlatformLever           Platform = "lever"
	PlatformWorkday         Platform = "workday"
	PlatformAshby           Platform = "ashby"
	PlatformSmartRecruiters Platform = "smartrecruiters"
	PlatformUnknown         Platform = "unknown"
)

type platformProfile struct {
	hosts   []string
	content []string
	noise   []string
}

var platforms = map[Platform]platformProfile{
	PlatformGreenhouse: {
		hosts:   []string{"greenhouse.io"},
		content: []string{".job__description.body", ".job__description", "#content", ".job-post-container"},
		noise:   []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	PlatformLever: {
		hosts:   []string{"lever.co"},
		content: []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:   []string{".apply-section", ".posting-apply"},
	},
	PlatformWorkday: {
		hosts:   []string{"workday.com", "myworkdayjobs.com"},
		content: []string{"[data-automation-id='jobDescription']", ".job-description"},
		noise:   []string{"[data-automation-id='applyButton']"},
	},
	PlatformAshby: {
		hosts:   []string{"ashbyhq.com"},
		content: []string{"[class*='_descriptionText']", "[class*='_description_']", "main"},
		noise:   []string{"[class*='_applicationForm']"},
	},
	PlatformSmartRecruiters: {
		hosts:   []string{"smartrecruiters.com"},
		content: []string{".job-sections", "[itemprop='description']", "main"},
		noise:   []string{".job-apply", "#st-apply"},
	},
}

// commonNoise is stripped from every job page regardless of platform.
var commonNoise = []string{
	"form",
	".application-form",
	".apply-button-container",
	".eeo-statement",
	".voluntary-disclosure",
	".legal-disclosure",
	".social-share",
	".cookie-consent",
	".gdpr-notice",
}

// DetectPlatform identifies the applicant tracking system from a URL host.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for platform, profile := range platforms {
		for _, suffix := range profile.hosts {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return platform
			}
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors for platform, most specific first.
func PlatformContentSelectors(platform Platform) []string {
	if profile, ok := platforms[platform]; ok {
		return append([]string(nil), profile.content...)
	}
	return JobPostingSelectors()
}

// PlatformNoiseSelectors returns selectors for application forms and legal boilerplate on platform.
func PlatformNoiseSelectors(platform Platform) []string {
	noise := append([]string(nil), commonNoise...)
	return append(noise, platforms[platform].noise...)
}

// JobText extracts the job description text from a page served by platform.
func JobText(html string, platform Platform) (string, error) {
	return ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
}
