package domain

// Overview — агрегаты для главной страницы. Читается заново на каждый просмотр.
type Overview struct {
	UserCount           int      `json:"user_count"`
	ActiveUserCount     int      `json:"active_user_count"`
	InactiveUserCount   int      `json:"inactive_user_count"`
	BlockedUserCount    int      `json:"blocked_user_count"`
	RevokedSessionCount int      `json:"revoked_session_count"`
	ActiveSessionCount  int      `json:"active_session_count"`
	OSTypes             []string `json:"os_types"`
	DeviceTypes         []string `json:"device_types"`
	BrowserTypes        []string `json:"browser_types"`
}

// CategoryCount — сегмент диаграммы: уникальная метка, число вхождений и цвет палитры.
type CategoryCount struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	ColorRef string `json:"color_ref"`
}
