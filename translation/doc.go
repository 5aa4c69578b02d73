// Package translation expõe o gateway de tradução em HTTP.
//
// Camadas, como em middleware/ratelimit:
//
//   - domain: requisição/resultado, contrato do provedor, taxonomia de erros
//   - application: Service.Translate (rate limit, validação, provedor, normalização)
//   - infra: provedores concretos (DeepL)
//   - translation (este pacote): handlers de /api/translate, /api/health, /api/ready
//     e mensagens de erro localizadas (go-i18n, en/ja)
package translation
