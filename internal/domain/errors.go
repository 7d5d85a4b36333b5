package domain

import "errors"

// Rejection is an expected business outcome carrying a reason that is safe
// to show to the caller. Anything that is not a Rejection is a fault.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

func reject(reason string) *Rejection { return &Rejection{Reason: reason} }

// AsRejection unwraps err into a Rejection when it is one.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

func IsRejection(err error) bool {
	_, ok := AsRejection(err)
	return ok
}

// login
var (
	ErrCredentialsRequired = reject("email and code are required")
	ErrInvalidCredentials  = reject("invalid credentials")
	ErrInvalidEmail        = reject("invalid email address")
	ErrCodeLocked          = reject("code locked after too many failed attempts")
	ErrLoginRejected       = reject("incorrect code or email, the campaign is closed or the code has expired")
)

// ranking
var (
	ErrNothingToSave       = reject("there are no positions to save")
	ErrSaveClosed          = reject("cannot save: campaign closed or already submitted")
	ErrResetClosed         = reject("cannot reset: campaign closed or already submitted")
	ErrSubmitClosed        = reject("cannot submit: campaign closed or already submitted")
	ErrDuplicateSubmission = reject("could not submit (possible duplicate submission)")
)

// campaigns
var (
	ErrCampaignCodeRequired = reject("campaign code is required")
	ErrCampaignNameRequired = reject("campaign name is required")
	ErrCampaignCodeTaken    = reject("campaign code already exists")
	ErrCampaignNotFound     = reject("campaign not found")
	ErrInvalidAccessWindow  = reject("access window ends before it starts")
)

// admin
var (
	ErrAdminNotConfigured = reject("admin password not configured")
	ErrAdminWrongPassword = reject("wrong password")
)
