package ws

const (
	RoomJoin  = "room.join"
	RoomLeave = "room.leave"

	MemberJoined = "member.joined"
	MemberLeft   = "member.left"
	MemberList   = "member.list"

	SignalEvent = "signal"
	ChatEvent   = "chat.message"

	ErrorEvent = "error"
)
