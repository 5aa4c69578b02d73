package domain

import "context"

// Translator é o Gateway de tradução visto pelo cliente.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// PreferenceStore é o armazenamento durável do idioma escolhido. Load devolve
// "" sem erro quando nada foi salvo.
type PreferenceStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, lang string) error
}

// BundleSource busca o bundle de um idioma. Um idioma sem bundle deve
// devolver ErrBundleNotFound.
type BundleSource interface {
	Bundle(ctx context.Context, lang string) (Tree, error)
}
