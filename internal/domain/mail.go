package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"` // 分钟
}

type ChangeEmailMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"` // 分钟
}

type SelectedSiteMailData struct {
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Gain      float64 `json:"gain"`
}

type OptimizationFinishedMailData struct {
	FullName      string                 `json:"fullName"`
	RunID         int64                  `json:"runID"`
	Status        OptimizationRunStatus  `json:"status"`
	CoveredWeight float64                `json:"coveredWeight"`
	TotalWeight   float64                `json:"totalWeight"`
	Generations   int                    `json:"generations"`
	Sites         []SelectedSiteMailData `json:"sites"`
	ErrorMessage  string                 `json:"errorMessage"`
}
