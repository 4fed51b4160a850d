// Package loginlog grava eventos de login em arquivos diários de texto.
//
// É best-effort: quem chama decide o que fazer com o erro, e nada aqui
// participa do caminho da API de franquias.
package loginlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Seoul é o fuso usado no carimbo de hora (KST não tem horário de verão).
var Seoul = time.FixedZone("KST", 9*60*60)

var ErrEmptyUsername = errors.New("username is required")

type Logger struct {
	Dir      string
	Location *time.Location
	Now      func() time.Time

	mu sync.Mutex
}

func New(dir string) *Logger {
	return &Logger{Dir: dir, Location: Seoul, Now: time.Now}
}

// Append acrescenta "[<hora local>] <username> 로그인" em login-<YYYY-MM-DD>.txt
// (data UTC), criando o diretório se preciso.
func (l *Logger) Append(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(l.FilePath(now), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open login log: %w", err)
	}
	if _, err := f.WriteString(Line(now.In(l.location()), username)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write login log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close login log: %w", err)
	}
	return nil
}

// FilePath é o arquivo do dia (UTC) de at.
func (l *Logger) FilePath(at time.Time) string {
	return filepath.Join(l.Dir, "login-"+at.UTC().Format("2006-01-02")+".txt")
}

// Line monta a linha do log, já terminada em \n.
func Line(local time.Time, username string) string {
	return "[" + FormatKorean(local) + "] " + username + " 로그인\n"
}

// FormatKorean formata como o locale ko-KR: "2025. 1. 15. 오후 3:04:05".
func FormatKorean(t time.Time) string {
	ampm := "오전"
	if t.Hour() >= 12 {
		ampm = "오후"
	}
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d. %d. %d. %s %d:%02d:%02d", t.Year(), int(t.Month()), t.Day(), ampm, h, t.Minute(), t.Second())
}

func (l *Logger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Logger) location() *time.Location {
	if l.Location != nil {
		return l.Location
	}
	return Seoul
}
