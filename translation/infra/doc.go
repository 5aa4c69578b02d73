// Package infra contém os provedores de tradução concretos.
//
//   - DeepLProvider: API v2 do DeepL, com pacing opcional via golang.org/x/time/rate
package infra
