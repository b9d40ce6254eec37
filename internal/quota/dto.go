// AngelaMos | 2026
// dto.go

package quota

type UsageResponse struct {
	Period    string `json:"period"`
	Count     int64  `json:"count"`
	Ceiling   int64  `json:"ceiling"`
	Remaining int64  `json:"remaining"`
	Plan      string `json:"plan"`
}
