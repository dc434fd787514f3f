package abstracts

type User interface {
	// 连接握手时分配的id
	ID() string
	Name() string
}
