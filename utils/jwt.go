package utils

import (
	"errors"
	"time"

	"tripmeet/config"

	"github.com/golang-jwt/jwt"
)

func secretKey() []byte {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = "tripmeet-dev"
	}
	return []byte(secret)
}

// GenerateRoomToken mints a signed access token granting a participant
// entry to one room. The token expires after the given duration.
func GenerateRoomToken(roomID, participantName string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  participantName,
		"room": roomID,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateRoomToken parses a room token and returns the room and
// participant it grants.
func ValidateRoomToken(tokenString string) (roomID, participantName string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token")
	}
	roomID, _ = claims["room"].(string)
	participantName, _ = claims["sub"].(string)
	if roomID == "" {
		return "", "", errors.New("token does not contain a valid 'room' claim")
	}
	return roomID, participantName, nil
}
