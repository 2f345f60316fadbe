package assets

const (
	FirstNamesPath = "pt_BR/names.txt"
	LastNamesPath  = "pt_BR/surnames.txt"
	CitiesPath     = "pt_BR/cities.json"
	StreetsPath    = "pt_BR/streets.txt"
)

var DefaultFirstNames = []string{"Ana", "Bruno", "Carlos", "Daniela", "Eduardo", "Fernanda", "Gustavo", "Helena"}

var DefaultLastNames = []string{"Silva", "Santos", "Oliveira", "Souza", "Lima", "Costa", "Ribeiro", "Almeida"}

var DefaultCities = []City{
	{Name: "Sao Paulo", UF: "SP"},
	{Name: "Rio de Janeiro", UF: "RJ"},
	{Name: "Belo Horizonte", UF: "MG"},
	{Name: "Porto Alegre", UF: "RS"},
	{Name: "Curitiba", UF: "PR"},
	{Name: "Salvador", UF: "BA"},
	{Name: "Fortaleza", UF: "CE"},
	{Name: "Recife", UF: "PE"},
}

var DefaultStreets = []string{"Rua das Flores", "Avenida Central", "Rua do Comercio", "Avenida Paulista", "Rua da Praia"}

var DDDCodes = []string{"11", "21", "31", "41", "51", "61", "71", "81", "91"}

var UFs = []string{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MT", "MS", "MG", "PA",
	"PB", "PR", "PE", "PI", "RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
}

// LinesOr returns the asset lines or fallback when the asset is empty or unreadable.
func (l *Loader) LinesOr(rel string, fallback []string) []string {
	if l == nil {
		return fallback
	}
	values, err := l.Lines(rel)
	if err != nil || len(values) == 0 {
		return fallback
	}
	return values
}

func (l *Loader) CitiesOr(rel string, fallback []City) []City {
	if l == nil {
		return fallback
	}
	values, err := l.Cities(rel)
	if err != nil || len(values) == 0 {
		return fallback
	}
	return values
}
