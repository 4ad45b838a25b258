package bot

import "strings"

// aliases: русские синонимы команд.
var aliases = map[string]string{
	"сдать":      "log",
	"история":    "history",
	"отмена":     "undo",
	"стата":      "stats",
	"статистика": "stats",
	"топ":        "top",
	"значки":     "badges",
	"компаньоны": "companions",
	"выбрать":    "pick",
	"имя":        "name",
	"огонек":     "streak",
	"огонёк":     "streak",
	"материалы":  "materials",
	"помощь":     "help",
}

// CommandParser парсит команды с префиксами !, . и /
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
// "/log@ecobot plastic 3" → ("log", ["plastic", "3"], true).
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}
	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	if i := strings.IndexByte(command, '@'); i >= 0 {
		command = command[:i]
	}
	if command == "" {
		return "", nil, false
	}
	if canonical, ok := aliases[command]; ok {
		command = canonical
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	return command, args, true
}
