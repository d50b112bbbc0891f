// Package member содержит доменную модель участника учебного сообщества.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package member

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// ID представляет уникальный идентификатор участника на чат-платформе.
type ID string

// IsValid проверяет, что идентификатор не пустой.
func (id ID) IsValid() bool {
	return len(strings.TrimSpace(string(id))) > 0
}

// String возвращает строковое представление идентификатора.
func (id ID) String() string {
	return string(id)
}

// Exp представляет очки опыта участника.
type Exp int

// IsValid проверяет, что Exp неотрицательный.
func (e Exp) IsValid() bool {
	return e >= 0
}

// Add складывает очки опыта.
func (e Exp) Add(delta Exp) Exp {
	return e + delta
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: MEMBER
// ══════════════════════════════════════════════════════════════════════════════

// Member - участник сообщества, зарегистрированный в боте.
type Member struct {
	// ID - идентификатор участника на чат-платформе.
	ID ID

	// Nickname - отображаемое имя участника.
	Nickname string

	// CurrentExp - текущее количество очков опыта.
	CurrentExp Exp

	// JoinedAt - время первой активности в боте.
	JoinedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// UnknownNickname используется при автоматической регистрации,
// когда имя участника недоступно.
const UnknownNickname = "Unknown"

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidID - невалидный идентификатор участника.
	ErrInvalidID = errors.New("invalid member id: must be non-empty")

	// ErrInvalidExp - невалидное значение опыта.
	ErrInvalidExp = errors.New("invalid exp: must be non-negative")

	// ErrMemberNotFound - участник не найден.
	ErrMemberNotFound = errors.New("member not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// NewMember создаёт нового участника с валидацией полей.
// Пустое имя заменяется на UnknownNickname.
func NewMember(id ID, nickname string, now time.Time) (*Member, error) {
	if !id.IsValid() {
		return nil, ErrInvalidID
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = UnknownNickname
	}

	return &Member{
		ID:         id,
		Nickname:   nickname,
		CurrentExp: 0,
		JoinedAt:   now,
		UpdatedAt:  now,
	}, nil
}

// Level возвращает текущий уровень участника.
func (m *Member) Level() Level {
	return LevelForExp(m.CurrentExp)
}

// AddExp начисляет опыт и возвращает новое значение.
func (m *Member) AddExp(delta Exp, now time.Time) (Exp, error) {
	if delta < 0 {
		return m.CurrentExp, ErrInvalidExp
	}

	m.CurrentExp = m.CurrentExp.Add(delta)
	m.UpdatedAt = now
	return m.CurrentExp, nil
}

// String возвращает строковое представление для логирования.
func (m *Member) String() string {
	return fmt.Sprintf(
		"Member{ID: %s, Nickname: %s, Exp: %d, Level: %d}",
		m.ID, m.Nickname, m.CurrentExp, m.Level(),
	)
}
