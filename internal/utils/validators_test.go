package utils

import "testing"

func TestValidateCPF(t *testing.T) {
	valid := []string{"529.982.247-25", "52998224725"}
	for _, cpf := range valid {
		if !ValidateCPF(cpf) {
			t.Errorf("ValidateCPF(%q) = false, want true", cpf)
		}
	}
	invalid := []string{
		"",
		"529.982.247-26", // wrong check digit
		"111.111.111-11", // repeated digits
		"5299822472",     // too short
		"529982247251",   // too long
		"abc.def.ghi-jk",
	}
	for _, cpf := range invalid {
		if ValidateCPF(cpf) {
			t.Errorf("ValidateCPF(%q) = true, want false", cpf)
		}
	}
}

func TestValidateCNPJ(t *testing.T) {
	valid := []string{"11.444.777/0001-61", "11444777000161"}
	for _, cnpj := range valid {
		if !ValidateCNPJ(cnpj) {
			t.Errorf("ValidateCNPJ(%q) = false, want true", cnpj)
		}
	}
	invalid := []string{
		"",
		"11.444.777/0001-62", // wrong check digit
		"11.111.111/1111-11", // repeated digits
		"1144477700016",      // too short
	}
	for _, cnpj := range invalid {
		if ValidateCNPJ(cnpj) {
			t.Errorf("ValidateCNPJ(%q) = true, want false", cnpj)
		}
	}
}
