package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCompanyName    = "RS MAN-TECH"
	DefaultCompanyAddress = "#14, 3rd Cross, Parappana Agrahara"
	DefaultCompanyCity    = "Bengaluru-100"
)

// Company is the employer shown on every payslip.
type Company struct {
	Name    string
	Address string
	City    string
	Logo    []byte
}

type companyFile struct {
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	City     string `yaml:"city"`
	LogoPath string `yaml:"logoPath"`
}

// LoadCompany builds the company profile. A COMPANY_FILE overrides the
// COMPANY_* variables field by field; its logoPath is relative to the file.
func LoadCompany(cfg Config) (Company, error) {
	company := Company{Name: cfg.CompanyName, Address: cfg.CompanyAddress, City: cfg.CompanyCity}
	logo := cfg.CompanyLogo
	logoBase := ""

	if cfg.CompanyFile != "" {
		b, err := os.ReadFile(cfg.CompanyFile)
		if err != nil {
			return Company{}, fmt.Errorf("read company file: %w", err)
		}
		var cf companyFile
		if err := yaml.Unmarshal(b, &cf); err != nil {
			return Company{}, fmt.Errorf("parse company file: %w", err)
		}
		if cf.Name != "" {
			company.Name = cf.Name
		}
		if cf.Address != "" {
			company.Address = cf.Address
		}
		if cf.City != "" {
			company.City = cf.City
		}
		if cf.LogoPath != "" {
			logo = cf.LogoPath
			logoBase = filepath.Dir(cfg.CompanyFile)
		}
	}
	if strings.TrimSpace(company.Name) == "" {
		return Company{}, errors.New("company name is required")
	}

	if logo != "" {
		data, err := loadLogo(logo, logoBase)
		if err != nil {
			return Company{}, err
		}
		company.Logo = data
	}
	return company, nil
}

// loadLogo accepts an image path or base64 image data, optionally as a
// data URI.
func loadLogo(value, base string) ([]byte, error) {
	path := value
	if base != "" && !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	}
	encoded := value
	if i := strings.Index(encoded, ";base64,"); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("company logo is neither a readable file nor base64 data")
	}
	return data, nil
}
