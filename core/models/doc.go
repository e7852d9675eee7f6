// Package models defines the gorm models persisted by bansync.
package models
