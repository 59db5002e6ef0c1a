package terrapatch

const Version = "main"
