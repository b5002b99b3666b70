package leadmagnet

type LeadMagnetRequest struct {
	Email           string `json:"email" binding:"required,email,max=255"`
	FirstName       string `json:"first_name" binding:"omitempty,max=50"`
	Resource        string `json:"resource" binding:"required,oneof=website-audit-checklist seo-starter-guide saas-launch-playbook"`
	NewsletterOptIn bool   `json:"newsletter_opt_in"`
}

type LeadMagnetResponse struct {
	DownloadURL string   `json:"download_url"`
	Resource    Resource `json:"resource"`
	EmailSent   bool     `json:"email_sent"`
}
