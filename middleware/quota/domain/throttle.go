package domain

// Limiter representa algo que pode decidir se uma ação é permitida agora.
//
// Usado no throttle por IP dos endpoints de login (token bucket em infra).
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave (ex: IP do cliente).
type LimiterStore interface {
	Get(key string) Limiter
}
