package cardnum

import (
	"fmt"

	"github.com/sunsun042505/sunwoobank/pkg/idgen"
)

// BIN 发卡行识别码
const BIN = "9410"

// Generate 生成一个通过 Luhn 校验的16位卡号
// 前4位为 BIN，中间11位来自雪花ID，末位为 Luhn 校验位
func Generate() string {
	body := fmt.Sprintf("%s%011d", BIN, idgen.NextID()%100000000000)
	return body + string(rune('0'+checkDigit(body)))
}

// Valid 校验卡号是否满足 Luhn 算法
func Valid(cardNo string) bool {
	if len(cardNo) < 2 {
		return false
	}
	for _, c := range cardNo {
		if c < '0' || c > '9' {
			return false
		}
	}
	body := cardNo[:len(cardNo)-1]
	return checkDigit(body) == int(cardNo[len(cardNo)-1]-'0')
}

// checkDigit 计算 Luhn 校验位
// 从右向左隔位翻倍，逢十进位后求和，补足到10的倍数
func checkDigit(body string) int {
	sum := 0
	double := true
	for i := len(body) - 1; i >= 0; i-- {
		d := int(body[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}
