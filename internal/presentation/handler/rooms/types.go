package rooms

type roomResponse struct {
	RoomKey     string   `json:"roomKey"`
	MemberCount int      `json:"memberCount"`
	Members     []string `json:"members"`
}
