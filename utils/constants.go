// File: utils/constants.go
package utils

import "time"

// SessionCachePrefix is the prefix used for Redis session snapshot keys.
const SessionCachePrefix = "session:"

// SessionCacheTTL is the time-to-live for session snapshot entries.
const SessionCacheTTL = 30 * time.Minute

// DemoPaymentAmount is the fixed checkout amount. The itinerary's
// computed total is display-only and never charged.
const DemoPaymentAmount = 0.01

// DemoPaymentCurrency labels the demo transfer.
const DemoPaymentCurrency = "SOL"

// MaxToolNotifications bounds the visible tool-activity queue.
const MaxToolNotifications = 3

// ToolNotificationTTL is how long a tool notification stays visible.
const ToolNotificationTTL = 5 * time.Second

// PaymentDisplayTimeout is how long a terminal payment state is shown
// before the machine returns to idle.
const PaymentDisplayTimeout = 8 * time.Second

// RoomTokenTTL is the lifetime of a minted room access token.
const RoomTokenTTL = 6 * time.Hour
