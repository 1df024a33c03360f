package addr

const unixPathMax = 104
