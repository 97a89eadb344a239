package meta

// locatives holds the prepositional case ("в Москве") for cities whose form is
// not the plain suffix rule. Names absent here get name+suffix.
var locatives = map[string]string{
	"Алейск":            "Алейске",
	"Ангарск":           "Ангарске",
	"Ачинск":            "Ачинске",
	"Барнаул":           "Барнауле",
	"Белгород":          "Белгороде",
	"Белово":            "Белово",
	"Белокуриха":        "Белокурихе",
	"Бийск":             "Бийске",
	"Бирюч":             "Бирюче",
	"Благовещенск":      "Благовещенске",
	"Боготол":           "Боготоле",
	"Бодайбо":           "Бодайбо",
	"Борисовка":         "Борисовке",
	"Бородино":          "Бородино",
	"Братск":            "Братске",
	"Валуйки":           "Валуйках",
	"Вилючинск":         "Вилючинске",
	"Волгоград":         "Волгограде",
	"Волоконовка":       "Волоконовке",
	"Воронеж":           "Воронеже",
	"Гальбштадт":        "Гальбштадте",
	"Гурьевск":          "Гурьевске",
	"Екатеринбург":      "Екатеринбурге",
	"Елизово":           "Елизово",
	"Енисейск":          "Енисейске",
	"Ермаковское":       "Ермаковском",
	"Железногорск":      "Железногорске",
	"Завитинск":         "Завитинске",
	"ЗАТО Циолковского": "ЗАТО Циолковского",
	"Зеленогорск":       "Зеленогорске",
	"Зея":               "Зее",
	"Зима":              "Зиме",
	"Ивня":              "Ивне",
	"Иланский":          "Иланском",
	"Казань":            "Казани",
	"Камень-на-Оби":     "Камне-на-Оби",
	"Канск":             "Канске",
	"Кемерово":          "Кемерово",
	"Киселёвск":         "Киселёвске",
	"Короча":            "Короче",
	"Красноярск":        "Красноярске",
	"Куйтун":            "Куйтуне",
	"Кулунда":           "Кулунде",
	"Ленинск-Кузнецкий": "Ленинске-Кузнецком",
	"Лесосибирск":       "Лесосибирске",
	"Мамонтово":         "Мамонтово",
	"Мариинск":          "Мариинске",
	"Междуреченск":      "Междуреченске",
	"Минусинск":         "Минусинске",
	"Москва":            "Москве",
	"Назарово":          "Назарово",
	"Нижний Новгород":   "Нижнем Новгороде",
	"Новокузнецк":       "Новокузнецке",
	"Новосибирск":       "Новосибирске",
	"Норильск":          "Норильске",
	"Омск":              "Омске",
	"Осинники":          "Осинниках",
	"Павловск":          "Павловске",
	"Пермь":             "Перми",
	"Петропавловск-Камчатский": "Петропавловске-Камчатском",
	"Поспелиха":                "Поспелихе",
	"Прокопьевск":              "Прокопьевске",
	"Райчихинск":               "Райчихинске",
	"Ракитное":                 "Ракитном",
	"Ребриха":                  "Ребрихе",
	"Ростов-на-Дону":           "Ростове-на-Дону",
	"Рубцовск":                 "Рубцовске",
	"Самара":                   "Самаре",
	"Санкт-Петербург":          "Санкт-Петербурге",
	"Саянск":                   "Саянске",
	"Свирск":                   "Свирске",
	"Свободный":                "Свободном",
	"Славгород":                "Славгороде",
	"Слюдянка":                 "Слюдянке",
	"Сосновоборск":             "Сосновоборске",
	"Строитель":                "Строителе",
	"Тайга":                    "Тайге",
	"Тайшет":                   "Тайшете",
	"Тальменка":                "Тальменке",
	"Тулун":                    "Тулуне",
	"Ужур":                     "Ужуре",
	"Усолье-Сибирское":         "Усолье-Сибирском",
	"Уфа":                      "Уфе",
	"Уяр":                      "Уяре",
	"Челябинск":                "Челябинске",
	"Черемхово":                "Черемхово",
	"Шарыпово":                 "Шарыпово",
	"Шебекино":                 "Шебекино",
	"Шелехово":                 "Шелехово",
	"Шипуново":                 "Шипуново",
	"Шуменское":                "Шуменском",
	"Юрга":                     "Юрге",
	"Яровое":                   "Яровом",
	"Яя":                       "Яе",
}

// Locative returns the prepositional form of a city name. Unknown names get
// suffix appended; no attempt is made to inflect them properly.
func Locative(name, suffix string) string {
	if l, ok := locatives[name]; ok {
		return l
	}
	return name + suffix
}
