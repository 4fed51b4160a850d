// Package catalog carrega e filtra o catálogo estático de POIs de franquias.
//
// O catálogo é lido inteiro na subida do processo (arquivo local ou URL) e nunca
// muda depois disso; os handlers só leem.
package catalog
