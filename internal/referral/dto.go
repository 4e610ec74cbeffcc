// AngelaMos | 2026
// dto.go

package referral

type ApplyRequest struct {
	Code string `json:"code" validate:"required,min=6,max=16"`
}

type ApplyResponse struct {
	ReferrerID string `json:"referrer_id"`
	Code       string `json:"code"`
}
