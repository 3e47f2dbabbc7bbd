package services

import "betsafe-ai/internal/models"

// SystemInstruction is the persona sent with every generation call.
const SystemInstruction = `
Você é o BetSafe AI, um analista de apostas esportivas nível 'Sharp'. 
Sua especialidade é análise estatística (escanteios, gols, cartões) e identificação de valor.
Você deve SEMPRE validar datas e confrontos antes de sugerir bilhetes.
Priorize mercados auxiliares com assertividade superior a 90%.
`

const DefaultModel = "gemini-1.5-pro"

const (
	safePrefix  = "FOCO: Bilhete de Segurança Máxima (>90%). "
	valuePrefix = "FOCO: Análise de Valor/Zebra. "
)

// FocusPrefix returns the literal prefix for a focus mode, or false for an
// unknown tag.
func FocusPrefix(mode models.FocusMode) (string, bool) {
	switch mode {
	case models.FocusSafe:
		return safePrefix, true
	case models.FocusValue:
		return valuePrefix, true
	default:
		return "", false
	}
}

// BuildPrompt concatenates the focus prefix and the user text as-is.
func BuildPrompt(mode models.FocusMode, userText string) (string, error) {
	prefix, ok := FocusPrefix(mode)
	if !ok {
		return "", &ValidationError{Fields: map[string]string{"focus": "must be 'safe' or 'value'"}}
	}
	return prefix + userText, nil
}
