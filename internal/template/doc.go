// Package template 替换设置字符串中的 {field} 占位符。
//
// 占位符对应 Context 中的键，嵌套值可用点号或方括号访问：
// {project.name} 与 {project[name]} 等价，{root[work]} 读取 root 映射中的 work 项。
// 不含占位符的字符串原样返回，因此重复解析结果不变。
package template
