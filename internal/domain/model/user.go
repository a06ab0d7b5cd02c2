package model

import "time"

type User struct {
	UserID              int64
	ReferrerID          *int64
	Lang                string
	Balance             int64
	ReservedBalance     int64
	Username            string
	JoinedAt            *time.Time
	AccessCodeUsed      string
	TermsAcceptedAt     *time.Time
	ChannelSubscribedAt *time.Time
}
