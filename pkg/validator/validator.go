// Package validator 注册自定义binding校验规则，并把校验错误转换为可读提示
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 角色与订单状态的合法取值（与domain保持一致，这里不引用domain避免pkg依赖internal）
var (
	roles         = []string{"Admin", "Staff", "Regular"}
	orderStatuses = []string{"Pending", "Cancelled", "Ongoing", "Completed"}
)

// Register 向gin的校验引擎注册自定义规则，启动时调用一次
//   - role: Admin | Staff | Regular
//   - orderstatus: Pending | Cancelled | Ongoing | Completed（不区分大小写）
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin校验引擎不是go-playground/validator")
	}
	return RegisterOn(v)
}

// RegisterOn 向指定校验器注册自定义规则
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("role", oneOf(roles, false)); err != nil {
		return err
	}
	return v.RegisterValidation("orderstatus", oneOf(orderStatuses, true))
}

func oneOf(allowed []string, foldCase bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if value == a || (foldCase && strings.EqualFold(value, a)) {
				return true
			}
		}
		return false
	}
}

// Message 把binding错误转换为面向用户的提示，非校验错误返回空串
func Message(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return ""
	}

	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s不能为空", field)
	case "email":
		return fmt.Sprintf("%s格式不正确", field)
	case "min", "gte":
		return fmt.Sprintf("%s不能小于%s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s不能大于%s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s长度必须为%s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s必须是[%s]之一", field, fe.Param())
	case "isbn":
		return fmt.Sprintf("%s不是合法的ISBN", field)
	case "role":
		return fmt.Sprintf("%s必须是[%s]之一", field, strings.Join(roles, " "))
	case "orderstatus":
		return fmt.Sprintf("%s必须是[%s]之一", field, strings.Join(orderStatuses, " "))
	default:
		return fmt.Sprintf("%s校验失败(%s)", field, fe.Tag())
	}
}
