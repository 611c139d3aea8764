package domain

// Session identifies a logged in user towards the backend.
type Session struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"sess_id"`
}

// Valid reports whether both identifiers are present.
func (s Session) Valid() bool {
	return s.UserID != "" && s.SessionID != ""
}

// Address is the single delivery address kept on a profile.
type Address struct {
	Line1     string `json:"address_line_1" yaml:"line1"`
	City      string `json:"city" yaml:"city"`
	Zip       string `json:"zip" yaml:"zip"`
	StateCode string `json:"state_code" yaml:"stateCode"`
}

// UserProfile is the user record returned by login and authorization.
type UserProfile struct {
	UserID         FlexString `json:"user_id" yaml:"userId"`
	SessionID      string     `json:"sess_id" yaml:"-"`
	Name           string     `json:"name" yaml:"name"`
	Email          string     `json:"email" yaml:"email"`
	Phone          string     `json:"phone" yaml:"phone"`
	Image          string     `json:"image" yaml:"image,omitempty"`
	Address        *Address   `json:"address,omitempty" yaml:"address,omitempty"`
	EmailVerified  FlexString `json:"is_email_verified" yaml:"emailVerified"`
	NeedSetup      FlexString `json:"need_setup" yaml:"needSetup"`
	BillingExpired FlexString `json:"billing_expired" yaml:"billingExpired"`
}

// Session extracts the identifiers carried by the profile.
func (u UserProfile) Session() Session {
	return Session{UserID: u.UserID.String(), SessionID: u.SessionID}
}

// NeedsBilling reports whether the user has to pick a subscription plan.
func (u UserProfile) NeedsBilling() bool {
	return u.NeedSetup == "1" || u.BillingExpired == "1"
}
