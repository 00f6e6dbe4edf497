// Package model はドメインモデルを定義する。
package model

import "time"

// ApiAccessToken はこのAPIが発行するベアラートークンを表す。
// 外部プロバイダー（Facebook）のトークンとは別物。
// それ自体は永続化されず、SecurityTokenの材料となる。
type ApiAccessToken struct {
	AccessToken    string
	IssueDate      time.Time
	ExpirationDate time.Time
	Application    string
	UserID         string
}

// SecurityToken はログインで発行されたAPIアクセストークンのセッションレコードを表す。
// 認証フローのみが生成・破棄し、認可層は読み取りのみを行う。
type SecurityToken struct {
	APIAccessToken      string
	IssueDate           time.Time
	ExpirationDate      time.Time
	Application         string
	UserID              string
	FacebookAccessToken string
}

// IsExpired は現在時刻が有効期限を過ぎているかを返す。
func (t *SecurityToken) IsExpired() bool {
	return t.IsExpiredAt(time.Now())
}

// IsExpiredAt は指定時刻が有効期限を過ぎているかを返す。
func (t *SecurityToken) IsExpiredAt(now time.Time) bool {
	return now.After(t.ExpirationDate)
}
