// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Topic struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Article struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Content     string        `json:"content"`
	TopicID     sql.NullInt64 `json:"topic_id"`
	AuthorID    sql.NullInt64 `json:"author_id"`
	Status      string        `json:"status"`
	PublishedAt sql.NullTime  `json:"published_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type ArticleReference struct {
	ID          int64          `json:"id"`
	ArticleID   int64          `json:"article_id"`
	Title       string         `json:"title"`
	Url         sql.NullString `json:"url"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type ArticleVersion struct {
	ID            int64         `json:"id"`
	ArticleID     int64         `json:"article_id"`
	VersionNumber int64         `json:"version_number"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Content       string        `json:"content"`
	CreatedBy     sql.NullInt64 `json:"created_by"`
	ChangeNote    string        `json:"change_note"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ClientInfo is the request metadata stored with every engagement event.
type ClientInfo struct {
	IPAddress   string `json:"ip_address"`
	UserAgent   string `json:"user_agent"`
	Referrer    string `json:"referrer"`
	Browser     string `json:"browser"`
	OS          string `json:"os"`
	DeviceType  string `json:"device_type"`
	CountryCode string `json:"country_code"`
}

type ArticleView struct {
	ID        int64         `json:"id"`
	EventUID  string        `json:"event_uid"`
	ArticleID int64         `json:"article_id"`
	UserID    sql.NullInt64 `json:"user_id"`
	ClientInfo
	CreatedAt time.Time `json:"created_at"`
}

type ArticleBounce struct {
	ID        int64         `json:"id"`
	EventUID  string        `json:"event_uid"`
	ArticleID int64         `json:"article_id"`
	UserID    sql.NullInt64 `json:"user_id"`
	ClientInfo
	TimeOnPage sql.NullInt64 `json:"time_on_page"`
	CreatedAt  time.Time     `json:"created_at"`
}

type ArticleShare struct {
	ID        int64         `json:"id"`
	EventUID  string        `json:"event_uid"`
	ArticleID int64         `json:"article_id"`
	UserID    sql.NullInt64 `json:"user_id"`
	ClientInfo
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
}

type DailyArticleStat struct {
	ID                int64     `json:"id"`
	ArticleID         int64     `json:"article_id"`
	Date              string    `json:"date"`
	Views             int64     `json:"views"`
	Shares            int64     `json:"shares"`
	Bounces           int64     `json:"bounces"`
	TimedBounces      int64     `json:"timed_bounces"`
	AverageTimeOnPage int64     `json:"average_time_on_page"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type SystemEvent struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
