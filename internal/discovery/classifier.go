package discovery

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

// languageSpec is one row of the closed language table: the evidence that
// maps a file onto a language tag plus the ecosystem context needed later.
type languageSpec struct {
	Language     entities.Language
	Extensions   []string
	Interpreters []string
	Manifests    []string
}

// languageTable is the closed, table-driven mapping from file evidence to
// language tags. Extending support means adding rows, not branches.
var languageTable = []languageSpec{
	{
		Language:     entities.LangPython,
		Extensions:   []string{".py", ".pyw"},
		Interpreters: []string{"python3", "python"},
		Manifests:    []string{"requirements.txt", "pyproject.toml", "setup.py", "Pipfile"},
	},
	{
		Language:     entities.LangJavaScript,
		Extensions:   []string{".js", ".mjs", ".cjs"},
		Interpreters: []string{"node"},
		Manifests:    []string{"package.json"},
	},
	{
		Language:     entities.LangTypeScript,
		Extensions:   []string{".ts", ".tsx"},
		Interpreters: []string{"ts-node", "deno", "bun"},
		Manifests:    []string{"package.json", "tsconfig.json"},
	},
	{
		Language:     entities.LangGo,
		Extensions:   []string{".go"},
		Interpreters: []string{"go"},
		Manifests:    []string{"go.mod"},
	},
	{
		Language:     entities.LangRust,
		Extensions:   []string{".rs"},
		Interpreters: []string{"cargo"},
		Manifests:    []string{"Cargo.toml"},
	},
	{
		Language:     entities.LangJava,
		Extensions:   []string{".java"},
		Interpreters: []string{"java"},
		Manifests:    []string{"pom.xml", "build.gradle", "build.gradle.kts"},
	},
	{
		Language:     entities.LangRuby,
		Extensions:   []string{".rb"},
		Interpreters: []string{"ruby"},
		Manifests:    []string{"Gemfile"},
	},
	{
		Language:     entities.LangPHP,
		Extensions:   []string{".php"},
		Interpreters: []string{"php"},
		Manifests:    []string{"composer.json"},
	},
	{
		Language:     entities.LangTerraform,
		Extensions:   []string{".tf"},
		Interpreters: []string{"terraform"},
		Manifests:    []string{"main.tf", "versions.tf"},
	},
	{
		Language:     entities.LangShell,
		Extensions:   []string{".sh", ".bash"},
		Interpreters: []string{"bash", "sh"},
		Manifests:    nil,
	},
}

var extensionIndex = func() map[string]*languageSpec {
	idx := make(map[string]*languageSpec)
	for i := range languageTable {
		for _, ext := range languageTable[i].Extensions {
			idx[ext] = &languageTable[i]
		}
	}
	return idx
}()

// SpecForExtension returns the language table row for a file extension, or
// nil when the extension is not recognized.
func SpecForExtension(ext string) *languageSpec {
	return extensionIndex[strings.ToLower(ext)]
}

// SpecForLanguage returns the table row for a language tag.
func SpecForLanguage(lang entities.Language) *languageSpec {
	for i := range languageTable {
		if languageTable[i].Language == lang {
			return &languageTable[i]
		}
	}
	return nil
}

// frameworkRule is one row of the framework-evidence table: a manifest file
// name plus a key that must appear in it, mapped to a framework tag.
type frameworkRule struct {
	Language entities.Language
	Manifest string
	// Key is looked up in the manifest: a dependency name for JSON/lock
	// manifests, a substring for free-form manifests, a file name when
	// Manifest itself is the evidence (e.g. manage.py).
	Key      string
	Name     string
	Entry    string
	Commands map[string]string
}

// frameworkTable drives framework detection. Rows are evaluated in order and
// the first match wins, so more specific frameworks come first (Next.js
// before React).
var frameworkTable = []frameworkRule{
	{Language: entities.LangPython, Manifest: "manage.py", Name: "Django", Entry: "manage.py",
		Commands: map[string]string{"run": "python manage.py runserver", "test": "python manage.py test"}},
	{Language: entities.LangPython, Manifest: "requirements.txt", Key: "flask", Name: "Flask",
		Commands: map[string]string{"run": "flask run", "test": "python -m pytest"}},
	{Language: entities.LangPython, Manifest: "requirements.txt", Key: "fastapi", Name: "FastAPI",
		Commands: map[string]string{"run": "uvicorn main:app --reload", "test": "python -m pytest"}},
	{Language: entities.LangPython, Manifest: "pyproject.toml", Key: "flask", Name: "Flask",
		Commands: map[string]string{"run": "flask run", "test": "python -m pytest"}},
	{Language: entities.LangPython, Manifest: "pyproject.toml", Key: "fastapi", Name: "FastAPI",
		Commands: map[string]string{"run": "uvicorn main:app --reload", "test": "python -m pytest"}},

	{Language: entities.LangJavaScript, Manifest: "package.json", Key: "next", Name: "Next.js",
		Commands: map[string]string{"dev": "npm run dev", "build": "npm run build", "start": "npm start"}},
	{Language: entities.LangJavaScript, Manifest: "package.json", Key: "nuxt", Name: "Nuxt.js",
		Commands: map[string]string{"dev": "npm run dev", "build": "npm run build"}},
	{Language: entities.LangJavaScript, Manifest: "package.json", Key: "@nestjs/core", Name: "NestJS",
		Commands: map[string]string{"start": "npm run start", "test": "npm run test"}},
	{Language: entities.LangJavaScript, Manifest: "package.json", Key: "express", Name: "Express.js",
		Commands: map[string]string{"start": "npm start", "dev": "npm run dev"}},
	{Language: entities.LangJavaScript, Manifest: "package.json", Key: "react", Name: "React",
		Commands: map[string]string{"start": "npm start", "build": "npm run build"}},
	{Language: entities.LangJavaScript, Manifest: "package.json", Key: "vue", Name: "Vue.js",
		Commands: map[string]string{"serve": "npm run serve", "build": "npm run build"}},
	{Language: entities.LangJavaScript, Manifest: "package.json", Key: "svelte", Name: "Svelte",
		Commands: map[string]string{"dev": "npm run dev", "build": "npm run build"}},

	{Language: entities.LangRuby, Manifest: "Gemfile", Key: "rails", Name: "Ruby on Rails",
		Commands: map[string]string{"server": "rails server", "test": "rails test"}},
	{Language: entities.LangPHP, Manifest: "composer.json", Key: "laravel/framework", Name: "Laravel",
		Commands: map[string]string{"serve": "php artisan serve", "test": "php artisan test"}},
	{Language: entities.LangJava, Manifest: "pom.xml", Key: "spring-boot", Name: "Spring Boot",
		Commands: map[string]string{"run": "mvn spring-boot:run", "test": "mvn test"}},
	{Language: entities.LangJava, Manifest: "pom.xml", Key: "quarkus", Name: "Quarkus",
		Commands: map[string]string{"dev": "mvn quarkus:dev", "test": "mvn test"}},
	{Language: entities.LangGo, Manifest: "go.mod", Key: "github.com/gin-gonic/gin", Name: "Gin",
		Commands: map[string]string{"run": "go run .", "test": "go test ./..."}},
	{Language: entities.LangGo, Manifest: "go.mod", Key: "github.com/labstack/echo", Name: "Echo",
		Commands: map[string]string{"run": "go run .", "test": "go test ./..."}},
	{Language: entities.LangRust, Manifest: "Cargo.toml", Key: "actix", Name: "Actix",
		Commands: map[string]string{"run": "cargo run", "test": "cargo test"}},
	{Language: entities.LangRust, Manifest: "Cargo.toml", Key: "rocket", Name: "Rocket",
		Commands: map[string]string{"run": "cargo run", "test": "cargo test"}},
}

// TypeScript shares the JavaScript framework rows.
func frameworkLanguage(lang entities.Language) entities.Language {
	if lang == entities.LangTypeScript {
		return entities.LangJavaScript
	}
	return lang
}

// DetectFramework inspects manifest evidence in dir and returns the first
// matching framework for the given language, or nil.
func DetectFramework(dir string, lang entities.Language) *entities.Framework {
	lang = frameworkLanguage(lang)
	for _, rule := range frameworkTable {
		if rule.Language != lang {
			continue
		}
		manifestPath := filepath.Join(dir, rule.Manifest)
		if rule.Key == "" {
			if _, err := os.Stat(manifestPath); err == nil {
				return &entities.Framework{Name: rule.Name, Entry: rule.Entry, Command: rule.Commands}
			}
			continue
		}
		version, ok := manifestEvidence(manifestPath, rule.Key)
		if !ok {
			continue
		}
		return &entities.Framework{Name: rule.Name, Version: version, Entry: rule.Entry, Command: rule.Commands}
	}
	return nil
}

// manifestEvidence checks whether key appears in the manifest and extracts a
// version when the manifest is structured enough to carry one.
func manifestEvidence(path, key string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	if filepath.Base(path) == "package.json" {
		return packageJSONEvidence(data, key)
	}

	// Free-form manifests: substring evidence, no version capture.
	if strings.Contains(strings.ToLower(string(data)), strings.ToLower(key)) {
		return "", true
	}
	return "", false
}

func packageJSONEvidence(data []byte, key string) (string, bool) {
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", false
	}
	if v, ok := pkg.Dependencies[key]; ok {
		return v, true
	}
	if v, ok := pkg.DevDependencies[key]; ok {
		return v, true
	}
	return "", false
}
