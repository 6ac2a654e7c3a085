package ui

import (
	"fmt"
	"io"
	"os"
)

// PrintWelcome выводит приветствие и лого
func PrintWelcome(out io.Writer, model string) {
	logoBytes, err := os.ReadFile("logo.txt")
	if err == nil {
		fmt.Fprintln(out, ColorCyan+string(logoBytes)+ColorReset)
	}
	fmt.Fprintln(out, ColorBold+IconGlobe+" spiderAgent v0.1.0"+ColorReset)
	fmt.Fprintln(out, ColorGray+"Загрузка страниц и извлечение основного контента"+ColorReset)
	if model != "" {
		fmt.Fprintln(out, ColorGray+"Модель: "+model+ColorReset)
	}
	fmt.Fprintln(out)
	PrintHelp(out)
	fmt.Fprintln(out, ColorGray+"⬆️ ⬇️"+ColorReset+" Используйте стрелки для навигации по истории команд")
	fmt.Fprintln(out)
}

// PrintHelp выводит список доступных команд
func PrintHelp(out io.Writer) {
	fmt.Fprintln(out, ColorYellow+IconList+" Доступные команды:"+ColorReset)
	fmt.Fprintln(out, "  "+ColorGreen+"crawl"+ColorReset+" <url> [каталог]     - Загрузить страницу и сохранить артефакты")
	fmt.Fprintln(out, "  "+ColorGreen+"digest"+ColorReset+" <файл> [каталог]   - Обработать локальный HTML")
	fmt.Fprintln(out, "  "+ColorGreen+"runs"+ColorReset+"                   - Список запусков")
	fmt.Fprintln(out, "  "+ColorGreen+"show"+ColorReset+" <id>              - Детали запуска")
	fmt.Fprintln(out, "  "+ColorGreen+"logs"+ColorReset+" <id>              - LLM логи запуска")
	fmt.Fprintln(out, "  "+ColorGreen+"test-llm"+ColorReset+" <текст>       - Проверить модель")
	fmt.Fprintln(out, "  "+ColorGreen+"clear"+ColorReset+"                  - Очистить экран")
	fmt.Fprintln(out, "  "+ColorGreen+"exit"+ColorReset+"                   - Выход")
	fmt.Fprintln(out)
}
