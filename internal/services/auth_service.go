package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const roleOrganizer = "organizer"

// AuthService выдает и проверяет токены оператора для REST API
type AuthService struct {
	jwtSecret  string
	expiration time.Duration
	adminID    int64
	botToken   string
	now        func() time.Time
}

// NewAuthService создает новый сервис авторизации
func NewAuthService(jwtSecret string, expiration time.Duration, adminID int64, botToken string) *AuthService {
	return &AuthService{
		jwtSecret:  jwtSecret,
		expiration: expiration,
		adminID:    adminID,
		botToken:   botToken,
		now:        time.Now,
	}
}

// TelegramAuthData представляет данные Telegram Login Widget
type TelegramAuthData struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
	AuthDate  int64  `json:"auth_date"`
	Hash      string `json:"hash"`
}

// loginMaxAge - срок годности данных виджета
const loginMaxAge = 24 * time.Hour

// AuthenticateWithTelegram проверяет подпись виджета и выдает токен организатора
func (s *AuthService) AuthenticateWithTelegram(data *TelegramAuthData) (string, error) {
	if !s.validateTelegramAuth(data) {
		return "", fmt.Errorf("%w: invalid telegram signature", ErrForbidden)
	}
	if s.now().Sub(time.Unix(data.AuthDate, 0)) > loginMaxAge {
		return "", fmt.Errorf("%w: telegram auth data expired", ErrForbidden)
	}
	return s.IssueToken(data.ID)
}

// validateTelegramAuth сверяет hash: HMAC-SHA256 строки проверки
// с ключом SHA256(токен бота)
func (s *AuthService) validateTelegramAuth(data *TelegramAuthData) bool {
	if s.botToken == "" || data.Hash == "" {
		return false
	}
	fields := map[string]string{
		"id":         strconv.FormatInt(data.ID, 10),
		"first_name": data.FirstName,
		"last_name":  data.LastName,
		"username":   data.Username,
		"photo_url":  data.PhotoURL,
		"auth_date":  strconv.FormatInt(data.AuthDate, 10),
	}
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + "=" + fields[k]
	}

	secret := sha256.Sum256([]byte(s.botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(lines, "\n")))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(data.Hash)))
}

// IssueToken выпускает токен организатора. Выдается только ADMIN_TELEGRAM_ID.
func (s *AuthService) IssueToken(telegramID int64) (string, error) {
	if s.adminID != 0 && telegramID != s.adminID {
		return "", ErrForbidden
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"telegram_id": telegramID,
		"role":        roleOrganizer,
		"exp":         now.Add(s.expiration).Unix(),
		"iat":         now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken проверяет токен и возвращает Telegram ID организатора
func (s *AuthService) ValidateToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrForbidden, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("%w: invalid token", ErrForbidden)
	}
	if role, _ := claims["role"].(string); role != roleOrganizer {
		return 0, fmt.Errorf("%w: role %q", ErrForbidden, role)
	}
	// числа в MapClaims декодируются как float64
	id, ok := claims["telegram_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("%w: missing telegram_id", ErrForbidden)
	}
	if s.adminID != 0 && int64(id) != s.adminID {
		return 0, ErrForbidden
	}
	return int64(id), nil
}
