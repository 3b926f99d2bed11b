package domain

import "fmt"

// ConfigurationError 表示运行参数或输入规模不合法，在进化开始之前就会被检测出来
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("参数 %s 不合法: %s", e.Field, e.Reason)
}

// InputDataError 表示输入数据本身存在问题（坐标或权重异常）
type InputDataError struct {
	Dataset string
	Index   int
	Reason  string
}

func (e *InputDataError) Error() string {
	return fmt.Sprintf("数据集 %s 第 %d 条记录有误: %s", e.Dataset, e.Index, e.Reason)
}
