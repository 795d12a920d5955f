package models

import "time"

type SubscriptionTier string

const (
	TierFree         SubscriptionTier = "free"
	TierStarter      SubscriptionTier = "starter"
	TierProfessional SubscriptionTier = "professional"
	TierEnterprise   SubscriptionTier = "enterprise"
)

type SocialPlatform string

const (
	PlatformFacebook  SocialPlatform = "facebook"
	PlatformInstagram SocialPlatform = "instagram"
	PlatformTwitter   SocialPlatform = "twitter"
	PlatformLinkedIn  SocialPlatform = "linkedin"
	PlatformTikTok    SocialPlatform = "tiktok"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusGenerated PostStatus = "generated"
	StatusScheduled PostStatus = "scheduled"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

type Account struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	FirstName    string           `json:"firstName"`
	LastName     string           `json:"lastName"`
	Avatar       *string          `json:"avatar,omitempty"`
	Role         string           `json:"role"`
	Subscription SubscriptionTier `json:"subscription"`
	IsActive     bool             `json:"isActive"`
	CreatedAt    time.Time        `json:"createdAt"`
	LastLoginAt  *time.Time       `json:"lastLoginAt,omitempty"`
}

type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

type BrandColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent,omitempty"`
}

// DefaultBrandColors is substituted when a company row carries no brand_colors.
func DefaultBrandColors() BrandColors {
	return BrandColors{Primary: "#3B82F6", Secondary: "#64748B"}
}

type Company struct {
	ID                  string      `json:"id"`
	UserID              string      `json:"userId"`
	Name                string      `json:"name"`
	Description         *string     `json:"description,omitempty"`
	Industry            *string     `json:"industry,omitempty"`
	Logo                *string     `json:"logo,omitempty"`
	Website             *string     `json:"website,omitempty"`
	Phone               *string     `json:"phone,omitempty"`
	Address             *string     `json:"address,omitempty"`
	SocialMedia         SocialLinks `json:"socialMedia"`
	BrandColors         BrandColors `json:"brandColors"`
	BrandVoice          string      `json:"brandVoice"`
	TargetAudience      *string     `json:"targetAudience,omitempty"`
	Products            *string     `json:"products,omitempty"`
	UniqueSellingPoints *string     `json:"uniqueSellingPoints,omitempty"`
	PreferredPlatforms  []string    `json:"preferredPlatforms"`
	ContentThemes       *string     `json:"contentThemes,omitempty"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

type Engagement struct {
	Likes    int `json:"likes"`
	Shares   int `json:"shares"`
	Comments int `json:"comments"`
	Reach    int `json:"reach"`
}

type Post struct {
	ID          string         `json:"id"`
	CompanyID   string         `json:"companyId"`
	UserID      string         `json:"userId"`
	Title       *string        `json:"title,omitempty"`
	Content     string         `json:"content"`
	Platform    SocialPlatform `json:"platform"`
	Status      PostStatus     `json:"status"`
	Images      []string       `json:"images"`
	Hashtags    []string       `json:"hashtags"`
	ScheduledAt *time.Time     `json:"scheduledAt,omitempty"`
	PublishedAt *time.Time     `json:"publishedAt,omitempty"`
	AIPrompt    *string        `json:"aiPrompt,omitempty"`
	Engagement  Engagement     `json:"engagement"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ActionURL *string   `json:"actionUrl,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type FileUpload struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// UsageStats is derived on demand from the other tables, never persisted.
// StorageUsed is in bytes; plan storage limits are in MB.
type UsageStats struct {
	CompaniesCount         int   `json:"companiesCount"`
	PostsThisMonth         int   `json:"postsThisMonth"`
	AIGenerationsThisMonth int   `json:"aiGenerationsThisMonth"`
	StorageUsed            int64 `json:"storageUsed"`
}
