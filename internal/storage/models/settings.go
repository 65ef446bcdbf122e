package models

// SiteConfig holds the site-wide settings shown across portals.
type SiteConfig struct {
	CompanyName  string `json:"company_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	WhatsApp     string `json:"whatsapp"`
	GDPRContact  string `json:"gdpr_contact"`
	DefaultCity  string `json:"default_city"`
}

// Settings table keys for SiteConfig fields.
const (
	SettingCompanyName  = "company_name"
	SettingContactEmail = "contact_email"
	SettingContactPhone = "contact_phone"
	SettingWhatsApp     = "whatsapp"
	SettingGDPRContact  = "gdpr_contact"
	SettingDefaultCity  = "default_city"
)
