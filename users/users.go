// Package users guarda a pequena lista de contas que podem entrar no mapa.
//
// As senhas ficam como hash bcrypt na configuração; nada em texto puro.
package users

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Account é uma entrada da configuração.
type Account struct {
	Username     string `koanf:"username" validate:"required"`
	PasswordHash string `koanf:"password_hash" validate:"required"`
}

// Directory é imutável depois de construído.
type Directory struct {
	hashes map[string][]byte
	dummy []byte
}

func NewDirectory(accounts []Account) (*Directory, error) {
	d := &Directory{hashes: make(map[string][]byte, len(accounts))}
	// o dummy usa o maior custo configurado: usuário inexistente custa o mesmo que senha errada
	cost := 0
	for _, a := range accounts {
		if a.Username == "" {
			return nil, errors.New("account with empty username")
		}
		c, err := bcrypt.Cost([]byte(a.PasswordHash))
		if err != nil {
			return nil, fmt.Errorf("account %q: invalid bcrypt hash: %w", a.Username, err)
		}
		cost = max(cost, c)
		d.hashes[a.Username] = []byte(a.PasswordHash)
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), cost)
	if err != nil {
		return nil, err
	}
	d.dummy = dummy
	return d, nil
}

func (d *Directory) Len() int { return len(d.hashes) }

// Authenticate devolve nil quando usuário e senha conferem.
func (d *Directory) Authenticate(username, password string) error {
	hash, ok := d.hashes[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(d.dummy, []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword gera o hash para colocar na configuração.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
