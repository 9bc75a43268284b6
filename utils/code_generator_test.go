// file: utils/code_generator_test.go
package utils

import (
	"strings"
	"testing"
)

func TestGenerateInvitationCode(t *testing.T) {
	code := GenerateInvitationCode(12)
	if len(code) != 12 {
		t.Fatalf("邀请码长度 = %d, 期望 12", len(code))
	}
	for _, c := range code {
		if !strings.ContainsRune(charset, c) {
			t.Fatalf("邀请码含非法字符 %q", c)
		}
	}
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp := GenerateOTP()
		if len(otp) != 6 {
			t.Fatalf("OTP 长度 = %d, 期望 6", len(otp))
		}
		if otp[0] == '0' {
			t.Fatalf("OTP 不应有前导零: %s", otp)
		}
	}
}
