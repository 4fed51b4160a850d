// Package application contém os casos de uso do gateway: resolução de credencial,
// política de quota diária, a orquestração Service.Authorize e o limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Authorize(ctx, req) retorna um Verdict (allowed / unauthorized /
// quota_exceeded / server_misconfigured).
package application
