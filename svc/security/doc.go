// Package security derives a user's security posture: a 0-100 score and an
// ordered list of recommendations.
//
// Score is a pure function of an AccountProfile and a Status. Service builds
// both fresh for every request from a StatusSource; nothing is cached.
//
// Points:
//
//	email verified                 25
//	password strong / medium / weak 30 / 20 / 10
//	two-factor enabled             25
//	phone verified                 10
//	three or fewer active sessions 10
//
// The total is capped at 100.
package security
