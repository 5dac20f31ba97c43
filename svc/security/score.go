package security

import "time"

// AccountProfile is the subset of the user record the scorer reads.
type AccountProfile struct {
	UserID            string     `json:"user_id"`
	Email             string     `json:"email"`
	EmailVerified     bool       `json:"email_verified"`
	PhoneVerified     bool       `json:"phone_verified"`
	HasPassword       bool       `json:"has_password"`
	PasswordHash      string     `json:"-"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
	TwoFactorEnabled  bool       `json:"two_factor_enabled"`
}

// Status is the derived security state of an account. It is never persisted.
type Status struct {
	PasswordStrength    Strength   `json:"password_strength"`
	TwoFactorEnabled    bool       `json:"two_factor_enabled"`
	ActiveSessions      int        `json:"active_sessions"`
	RecentLoginAttempts int        `json:"recent_login_attempts"`
	LastPasswordChange  *time.Time `json:"last_password_change,omitempty"`
}

// Severity of a recommendation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Recommendation is one unmet security condition with a way to fix it.
type Recommendation struct {
	ID       string   `json:"id"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Action   string   `json:"action"`
	Route    string   `json:"route"`
}

// Result is the output of Score.
type Result struct {
	Score           int              `json:"score"`
	Recommendations []Recommendation `json:"recommendations"`
}

const (
	pointsEmailVerified  = 25
	pointsStrongPassword = 30
	pointsMediumPassword = 20
	pointsWeakPassword   = 10
	pointsTwoFactor      = 25
	pointsPhoneVerified  = 10
	pointsFewSessions    = 10

	maxScore         = 100
	maxQuietSessions = 3
)

var (
	recVerifyEmail = Recommendation{
		ID:       "verify_email",
		Severity: SeverityError,
		Title:    "Verify email",
		Action:   "Verify your email address",
		Route:    "/account/verify-email",
	}
	recSetPassword = Recommendation{
		ID:       "set_password",
		Severity: SeverityInfo,
		Title:    "Set password",
		Action:   "Add a password to your account",
		Route:    "/account/security/password",
	}
	recWeakPassword = Recommendation{
		ID:       "weak_password",
		Severity: SeverityWarning,
		Title:    "Update password",
		Action:   "Choose a stronger password",
		Route:    "/account/security/password",
	}
	recEnableTwoFactor = Recommendation{
		ID:       "enable_two_factor",
		Severity: SeverityWarning,
		Title:    "Enable 2FA",
		Action:   "Turn on two-factor authentication",
		Route:    "/account/security/two-factor",
	}
	recAddPhone = Recommendation{
		ID:       "add_phone",
		Severity: SeverityInfo,
		Title:    "Add phone",
		Action:   "Add and verify a phone number",
		Route:    "/account/security/phone",
	}
)

// Score computes the security score and recommendations. Recommendations are
// independent of the points and always come in the same order: email,
// password, two-factor, phone.
func Score(profile AccountProfile, status Status) Result {
	score := 0
	recs := make([]Recommendation, 0, 4)

	if profile.EmailVerified {
		score += pointsEmailVerified
	} else {
		recs = append(recs, recVerifyEmail)
	}

	if profile.HasPassword {
		switch status.PasswordStrength {
		case StrengthStrong:
			score += pointsStrongPassword
		case StrengthMedium:
			score += pointsMediumPassword
		case StrengthWeak:
			score += pointsWeakPassword
			recs = append(recs, recWeakPassword)
		}
	} else {
		recs = append(recs, recSetPassword)
	}

	if status.TwoFactorEnabled {
		score += pointsTwoFactor
	} else {
		recs = append(recs, recEnableTwoFactor)
	}

	if profile.PhoneVerified {
		score += pointsPhoneVerified
	} else {
		recs = append(recs, recAddPhone)
	}

	if status.ActiveSessions <= maxQuietSessions {
		score += pointsFewSessions
	}

	return Result{Score: min(score, maxScore), Recommendations: recs}
}
