package utils

import "strings"

// ValidateCPF checks the two verification digits of a Brazilian CPF.
// Formatting characters (dots, dash) are ignored; repeated-digit numbers
// like 111.111.111-11 are rejected even though their digits verify.
func ValidateCPF(cpf string) bool {
	digits := onlyDigits(cpf)
	if len(digits) != 11 || allSame(digits) {
		return false
	}
	for _, pos := range []int{9, 10} {
		sum := 0
		for i := 0; i < pos; i++ {
			sum += int(digits[i]-'0') * (pos + 1 - i)
		}
		check := (sum * 10) % 11
		if check == 10 {
			check = 0
		}
		if check != int(digits[pos]-'0') {
			return false
		}
	}
	return true
}

// ValidateCNPJ checks the two verification digits of a Brazilian CNPJ.
func ValidateCNPJ(cnpj string) bool {
	digits := onlyDigits(cnpj)
	if len(digits) != 14 || allSame(digits) {
		return false
	}
	weights := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	for _, pos := range []int{12, 13} {
		sum := 0
		for i := 0; i < pos; i++ {
			sum += int(digits[i]-'0') * weights[len(weights)-pos+i]
		}
		check := sum % 11
		if check < 2 {
			check = 0
		} else {
			check = 11 - check
		}
		if check != int(digits[pos]-'0') {
			return false
		}
	}
	return true
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
